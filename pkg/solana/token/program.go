package token

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/binary"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
)

// ProgramKey is the address of the token program that should be used.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// MaxDecimals is the largest number of decimals accepted for a new mint.
const MaxDecimals = 9

type Command byte

const (
	CommandInitializeMint Command = iota
	CommandInitializeAccount
	CommandInitializeMultisig
	CommandTransfer
	CommandApprove
	CommandRevoke
	CommandSetAuthority
	CommandMintTo
	CommandBurn
	CommandCloseAccount
	CommandFreezeAccount
	CommandThawAccount

	CommandUnknown = Command(math.MaxUint8)
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/error.rs
const (
	ErrorNotRentExempt solana.CustomError = iota
	ErrorInsufficientFunds
	ErrorInvalidMint
	ErrorMintMismatch
	ErrorOwnerMismatch
	ErrorFixedSupply
	ErrorAlreadyInUse
	ErrorInvalidNumberOfProvidedSigners
	ErrorInvalidNumberOfRequiredSigners
	ErrorUninitializedState
	ErrorNativeNotSupported
	ErrorNonNativeHasBalance
	ErrorInvalidInstruction
	ErrorInvalidState
	ErrorOverflow
	ErrorAuthorityTypeNotSupported
	ErrorMintCannotFreeze
	ErrorAccountFrozen
	ErrorMintDecimalsMismatch
)

const (
	initializeMintDataSize = 1 + 1 + ed25519.PublicKeySize + 1 + ed25519.PublicKeySize
	mintToDataSize         = 1 + 8
)

// GetCommand returns the token command of ix.
func GetCommand(ix solana.Instruction) (Command, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(ix.Data[0]), nil
}

// InitializeMint initializes a mint account that was created and assigned to
// the token program in the same transaction. A nil freezeAuthority leaves the
// mint without one.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L25-L40
func InitializeMint(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint to initialize.
	//   1. `[]` Rent sysvar
	data := binary.NewEncoder(initializeMintDataSize).
		Uint8(byte(CommandInitializeMint)).
		Uint8(decimals).
		Key32(mintAuthority).
		OptionalKey32(freezeAuthority, 1, false).
		Bytes()

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)
}

type DecompiledInitializeMint struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecompileInitializeMint(ix solana.Instruction) (*DecompiledInitializeMint, error) {
	d, err := decode(ix, CommandInitializeMint, 2)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(system.RentSysVar, ix.Accounts[1].PublicKey) {
		return nil, errors.Errorf("invalid rent program")
	}

	decompiled := &DecompiledInitializeMint{
		Mint:            ix.Accounts[0].PublicKey,
		Decimals:        d.Uint8(),
		MintAuthority:   d.Key32(),
		FreezeAuthority: d.OptionalKey32(1, false),
	}
	if d.Err() != nil || d.Remaining() != 0 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}
	return decompiled, nil
}

// MintTo mints new tokens into an account. The authority must sign.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L137-L151
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   * Single authority
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	data := binary.NewEncoder(mintToDataSize).
		Uint8(byte(CommandMintTo)).
		Uint64(amount).
		Bytes()

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecompileMintTo(ix solana.Instruction) (*DecompiledMintTo, error) {
	d, err := decode(ix, CommandMintTo, 3)
	if err != nil {
		return nil, err
	}
	if len(ix.Data) != mintToDataSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledMintTo{
		Mint:        ix.Accounts[0].PublicKey,
		Destination: ix.Accounts[1].PublicKey,
		Authority:   ix.Accounts[2].PublicKey,
		Amount:      d.Uint64(),
	}, nil
}

func decode(ix solana.Instruction, command Command, accounts int) (*binary.Decoder, error) {
	actual, err := GetCommand(ix)
	if err != nil {
		return nil, err
	}
	if actual != command {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) != accounts {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}

	d := binary.NewDecoder(ix.Data)
	d.Uint8()
	return d, nil
}
