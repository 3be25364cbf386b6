package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

var (
	ErrSignerNotInMessage = errors.New("signer is not a required signer of the message")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// RecentBlockhash is a blockhash together with the last block height at which
// transactions referencing it are still accepted.
type RecentBlockhash struct {
	Blockhash            Blockhash
	LastValidBlockHeight uint64
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a compiled legacy transaction message.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into an unsigned transaction paid
// for by payer.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}
	for _, ix := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: ix.Program,
			isProgram: true,
		})
		accounts = append(accounts, ix.Accounts...)
	}

	accounts = mergeAccountMetas(accounts)
	sort.Sort(SortableAccountMeta(accounts))

	var m Message
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		switch {
		case account.IsSigner:
			m.Header.NumSignatures++
			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		case !account.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ix.Program)),
			Data:         ix.Data,
		}
		for _, a := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(m.Accounts, normalizeKey(a.PublicKey))))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// Signature returns the first signature, which identifies the transaction.
// It is zero when the transaction has no signature slots.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// FeePayer returns the account paying for the transaction.
func (t *Transaction) FeePayer() ed25519.PublicKey {
	if len(t.Message.Accounts) == 0 {
		return nil
	}
	return t.Message.Accounts[0]
}

// RequiredSigners returns the accounts that must sign, in signature order.
func (t *Transaction) RequiredSigners() []ed25519.PublicKey {
	n := int(t.Message.Header.NumSignatures)
	if n > len(t.Message.Accounts) {
		n = len(t.Message.Accounts)
	}
	return t.Message.Accounts[:n]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign signs the message with each key. Every key must belong to a
// required signer. Signatures are placed by account position, so the
// order of signers does not matter.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	message := t.Message.Marshal()

	for _, s := range signers {
		pub := s.Public().(ed25519.PublicKey)

		index := indexOf(t.Message.Accounts, pub)
		if index < 0 || index >= len(t.Signatures) {
			return errors.Wrapf(ErrSignerNotInMessage, "signer %s", base58.Encode(pub))
		}

		copy(t.Signatures[index][:], ed25519.Sign(s, message))
	}

	return nil
}

// IsFullySigned reports whether every required signature is present and
// valid over the current message.
func (t *Transaction) IsFullySigned() bool {
	signers := t.RequiredSigners()
	if len(signers) == 0 || len(t.Signatures) != len(signers) {
		return false
	}

	message := t.Message.Marshal()
	for i, signer := range signers {
		if !ed25519.Verify(signer, message, t.Signatures[i][:]) {
			return false
		}
	}
	return true
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, s))
	}
	sb.WriteString("Message:\n")
	sb.WriteString(fmt.Sprintf("  Header: signatures=%d readonly_signed=%d readonly=%d\n",
		t.Message.Header.NumSignatures,
		t.Message.Header.NumReadonlySigned,
		t.Message.Header.NumReadOnly,
	))
	sb.WriteString(fmt.Sprintf("  Blockhash: %s\n", t.Message.RecentBlockhash))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i, ix := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d: program=%d accounts=%v data=%x\n", i, ix.ProgramIndex, ix.Accounts, ix.Data))
	}
	return sb.String()
}

// mergeAccountMetas collapses duplicate references, keeping the first
// position and the union of their permissions.
func mergeAccountMetas(accounts []AccountMeta) []AccountMeta {
	merged := make([]AccountMeta, 0, len(accounts))

outer:
	for _, a := range accounts {
		a.PublicKey = normalizeKey(a.PublicKey)

		for j := range merged {
			if bytes.Equal(a.PublicKey, merged[j].PublicKey) {
				merged[j].IsSigner = merged[j].IsSigner || a.IsSigner
				merged[j].IsWritable = merged[j].IsWritable || a.IsWritable
				merged[j].isPayer = merged[j].isPayer || a.isPayer
				merged[j].isProgram = merged[j].isProgram || a.isProgram
				continue outer
			}
		}

		merged = append(merged, a)
	}

	return merged
}

func normalizeKey(key ed25519.PublicKey) ed25519.PublicKey {
	if len(key) == 0 {
		return make([]byte, ed25519.PublicKeySize)
	}
	return key
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
