// Package transaction assembles signed transaction envelopes from builder
// output.
package transaction

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/solana"
)

var (
	ErrNoInstructions    = errors.New("no instructions")
	ErrSignerSetMismatch = errors.New("provided signers do not match required signers")
	ErrMissingPrivateKey = errors.New("signer has no private key")
	ErrMissingFeePayer   = errors.New("fee payer is required")
	ErrInvalidEnvelope   = errors.New("invalid envelope")
	ErrTooLarge          = errors.New("transaction exceeds the maximum size")
)

// Envelope is a fully signed transaction together with the blockhash it was
// bound to.
type Envelope struct {
	Transaction solana.Transaction
	Freshness   solana.RecentBlockhash
}

// Assemble compiles instructions into a legacy transaction paid for by
// feePayer, binds it to freshness and signs it with every signer.
//
// The signers, with the fee payer implied, must be exactly the accounts the
// instructions require to sign.
func Assemble(
	feePayer *common.Account,
	freshness solana.RecentBlockhash,
	signers []*common.Account,
	instructions ...solana.Instruction,
) (*Envelope, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if feePayer == nil {
		return nil, ErrMissingFeePayer
	}

	provided := []*common.Account{feePayer}
	for _, signer := range signers {
		if signer == nil {
			return nil, errors.Wrap(ErrSignerSetMismatch, "nil signer")
		}
		if !containsAccount(provided, signer.PublicKey().ToBytes()) {
			provided = append(provided, signer)
		}
	}

	if err := checkSignerSet(feePayer.PublicKey().ToBytes(), provided, instructions); err != nil {
		return nil, err
	}

	privateKeys := make([]ed25519.PrivateKey, len(provided))
	for i, signer := range provided {
		if !signer.HasPrivateKey() {
			return nil, errors.Wrapf(ErrMissingPrivateKey, "signer %s", signer.PublicKey().ToBase58())
		}
		privateKeys[i] = signer.PrivateKey().ToBytes()
	}

	txn := solana.NewTransaction(feePayer.PublicKey().ToBytes(), instructions...)
	txn.SetBlockhash(freshness.Blockhash)
	if size := len(txn.Marshal()); size > solana.MaxTransactionSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", size)
	}
	if err := txn.Sign(privateKeys...); err != nil {
		return nil, errors.Wrap(err, "error signing transaction")
	}

	return &Envelope{
		Transaction: txn,
		Freshness:   freshness,
	}, nil
}

// RequiredSigners returns the fee payer followed by every account any
// instruction marks as a signer, without duplicates.
func RequiredSigners(feePayer ed25519.PublicKey, instructions ...solana.Instruction) []ed25519.PublicKey {
	required := []ed25519.PublicKey{feePayer}
	for _, ix := range instructions {
		for _, signer := range ix.Signers() {
			if !containsKey(required, signer) {
				required = append(required, signer)
			}
		}
	}
	return required
}

func checkSignerSet(feePayer ed25519.PublicKey, provided []*common.Account, instructions []solana.Instruction) error {
	required := RequiredSigners(feePayer, instructions...)

	var missing, extra []string
	for _, key := range required {
		if !containsAccount(provided, key) {
			missing = append(missing, base58.Encode(key))
		}
	}
	for _, signer := range provided {
		if !containsKey(required, signer.PublicKey().ToBytes()) {
			extra = append(extra, signer.PublicKey().ToBase58())
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(extra)
	return errors.Wrapf(ErrSignerSetMismatch, "missing [%s], extra [%s]", strings.Join(missing, ", "), strings.Join(extra, ", "))
}

// Signature returns the signature that identifies the transaction.
func (e *Envelope) Signature() solana.Signature {
	return e.Transaction.Signature()
}

// Encode returns the base64 wire encoding of the transaction.
func (e *Envelope) Encode() string {
	return base64.StdEncoding.EncodeToString(e.Transaction.Marshal())
}

// Decode parses the base64 wire encoding produced by Encode. The freshness
// token only carries the blockhash, since the expiry height is not part of
// the wire format.
func Decode(encoded string) (*Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEnvelope, "malformed base64")
	}

	var txn solana.Transaction
	if err := txn.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(ErrInvalidEnvelope, "malformed transaction: %v", err)
	}
	if txn.FeePayer() == nil || len(txn.Signatures) == 0 {
		return nil, errors.Wrap(ErrInvalidEnvelope, "missing fee payer")
	}

	return &Envelope{
		Transaction: txn,
		Freshness: solana.RecentBlockhash{
			Blockhash: txn.Message.RecentBlockhash,
		},
	}, nil
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func containsAccount(accounts []*common.Account, key ed25519.PublicKey) bool {
	for _, account := range accounts {
		if bytes.Equal(account.PublicKey().ToBytes(), key) {
			return true
		}
	}
	return false
}
