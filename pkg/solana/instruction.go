package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta is a single account reference of an instruction.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	isPayer   bool
	isProgram bool
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta returns a readonly account reference.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey: pub,
		IsSigner:  isSigner,
	}
}

// rank places an account within the message account list. Lower ranks come
// first: the fee payer, then writable signers, readonly signers, writable
// non-signers, readonly non-signers and finally invoked programs.
func (m AccountMeta) rank() int {
	switch {
	case m.isPayer:
		return 0
	case m.isProgram && !m.IsSigner && !m.IsWritable:
		return 5
	case m.IsSigner && m.IsWritable:
		return 1
	case m.IsSigner:
		return 2
	case m.IsWritable:
		return 3
	default:
		return 4
	}
}

// SortableAccountMeta sorts account references into message order.
//
// Reference: https://docs.solana.com/developing/programming-model/transactions#account-addresses-format
type SortableAccountMeta []AccountMeta

func (s SortableAccountMeta) Len() int      { return len(s) }
func (s SortableAccountMeta) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s SortableAccountMeta) Less(i, j int) bool {
	ri, rj := s[i].rank(), s[j].rank()
	if ri != rj {
		return ri < rj
	}
	return bytes.Compare(s[i].PublicKey, s[j].PublicKey) < 0
}

// Instruction is an uncompiled program invocation.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Equal reports whether two instructions are structurally identical.
func (i Instruction) Equal(other Instruction) bool {
	if !bytes.Equal(i.Program, other.Program) || !bytes.Equal(i.Data, other.Data) {
		return false
	}
	if len(i.Accounts) != len(other.Accounts) {
		return false
	}
	for idx, a := range i.Accounts {
		b := other.Accounts[idx]
		if !bytes.Equal(a.PublicKey, b.PublicKey) || a.IsSigner != b.IsSigner || a.IsWritable != b.IsWritable {
			return false
		}
	}
	return true
}

// Signers returns the distinct accounts flagged as signers, in first
// appearance order.
func (i Instruction) Signers() []ed25519.PublicKey {
	var signers []ed25519.PublicKey
	for _, a := range i.Accounts {
		if a.IsSigner && indexOf(signers, a.PublicKey) < 0 {
			signers = append(signers, a.PublicKey)
		}
	}
	return signers
}

// CompiledInstruction is an instruction whose accounts have been replaced
// by indexes into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// IsSigner reports whether the account at index must sign the message.
func (m Message) IsSigner(index int) bool {
	return index < int(m.Header.NumSignatures)
}

// IsWritable reports whether the account at index is writable.
func (m Message) IsWritable(index int) bool {
	if m.IsSigner(index) {
		return index < int(m.Header.NumSignatures)-int(m.Header.NumReadonlySigned)
	}
	return index < len(m.Accounts)-int(m.Header.NumReadOnly)
}

// DecompileInstruction rebuilds the instruction at index with account keys
// and permissions resolved from the message.
func (m Message) DecompileInstruction(index int) (Instruction, error) {
	if index < 0 || index >= len(m.Instructions) {
		return Instruction{}, errors.Errorf("instruction doesn't exist at %d", index)
	}

	compiled := m.Instructions[index]
	if int(compiled.ProgramIndex) >= len(m.Accounts) {
		return Instruction{}, errors.Errorf("program index %d out of range", compiled.ProgramIndex)
	}

	ix := Instruction{
		Program: m.Accounts[compiled.ProgramIndex],
		Data:    compiled.Data,
	}
	for _, a := range compiled.Accounts {
		if int(a) >= len(m.Accounts) {
			return Instruction{}, errors.Errorf("account index %d out of range", a)
		}
		ix.Accounts = append(ix.Accounts, AccountMeta{
			PublicKey:  m.Accounts[a],
			IsSigner:   m.IsSigner(int(a)),
			IsWritable: m.IsWritable(int(a)),
		})
	}
	return ix, nil
}
