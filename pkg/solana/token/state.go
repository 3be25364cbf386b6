package token

import (
	"crypto/ed25519"

	"github.com/tokenforge/tokenforge/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L15-L30
const MintAccountSize = 82

const optionSize = 4

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	/// The account's state
	State AccountState
	// If set, this is a native token, and the value logs the rent-exempt reserve.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	return binary.NewEncoder(AccountSize).
		Key32(a.Mint).
		Key32(a.Owner).
		Uint64(a.Amount).
		OptionalKey32(a.Delegate, optionSize, true).
		Uint8(byte(a.State)).
		OptionalUint64(a.IsNative, optionSize).
		Uint64(a.DelegatedAmount).
		OptionalKey32(a.CloseAuthority, optionSize, true).
		Bytes()
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	d := binary.NewDecoder(b)
	a.Mint = d.Key32()
	a.Owner = d.Key32()
	a.Amount = d.Uint64()
	a.Delegate = d.OptionalKey32(optionSize, true)
	a.State = AccountState(d.Uint8())
	a.IsNative = d.OptionalUint64(optionSize)
	a.DelegatedAmount = d.Uint64()
	a.CloseAuthority = d.OptionalKey32(optionSize, true)

	return d.Err() == nil
}

// Mint is the state of a token mint.
type Mint struct {
	// Optional authority used to mint new tokens. Without one the supply is fixed.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals byte
	// Is true if this structure has been initialized
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	var initialized byte
	if m.IsInitialized {
		initialized = 1
	}

	return binary.NewEncoder(MintAccountSize).
		OptionalKey32(m.MintAuthority, optionSize, true).
		Uint64(m.Supply).
		Uint8(m.Decimals).
		Uint8(initialized).
		OptionalKey32(m.FreezeAuthority, optionSize, true).
		Bytes()
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintAccountSize {
		return false
	}

	d := binary.NewDecoder(b)
	m.MintAuthority = d.OptionalKey32(optionSize, true)
	m.Supply = d.Uint64()
	m.Decimals = d.Uint8()
	m.IsInitialized = d.Uint8() == 1
	m.FreezeAuthority = d.OptionalKey32(optionSize, true)

	return d.Err() == nil
}
