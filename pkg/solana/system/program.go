package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/binary"
)

var (
	// ProgramKey is the all-zero system program address.
	ProgramKey = make(ed25519.PublicKey, ed25519.PublicKeySize)

	// RentSysVar is the address of the rent sysvar.
	RentSysVar = mustDecode("SysvarRent111111111111111111111111111111111")
)

func mustDecode(address string) ed25519.PublicKey {
	key, err := base58.Decode(address)
	if err != nil {
		panic(err)
	}
	return key
}

const (
	commandCreateAccount uint32 = 0
	commandTransfer      uint32 = 2
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L14-L26
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramID
	ErrorInvalidAccountDataLength
	ErrorMaxSeedLengthExceeded
	ErrorAddressWithSeedMismatch
)

const (
	createAccountDataSize = 4 + 8 + 8 + ed25519.PublicKeySize
	transferDataSize      = 4 + 8
)

// CreateAccount allocates size bytes for address, funds it with lamports,
// and assigns it to owner. Both funder and address must sign.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L58-L72
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	data := binary.NewEncoder(createAccountDataSize).
		Uint32(commandCreateAccount).
		Uint64(lamports).
		Uint64(size).
		Key32(owner).
		Bytes()

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

// Transfer moves lamports from a system owned account.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L73-L77
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	data := binary.NewEncoder(transferDataSize).
		Uint32(commandTransfer).
		Uint64(lamports).
		Bytes()

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccount(ix solana.Instruction) (*DecompiledCreateAccount, error) {
	d, err := decode(ix, commandCreateAccount, 2, createAccountDataSize)
	if err != nil {
		return nil, err
	}

	return &DecompiledCreateAccount{
		Funder:   ix.Accounts[0].PublicKey,
		Address:  ix.Accounts[1].PublicKey,
		Lamports: d.Uint64(),
		Size:     d.Uint64(),
		Owner:    d.Key32(),
	}, nil
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

func DecompileTransfer(ix solana.Instruction) (*DecompiledTransfer, error) {
	d, err := decode(ix, commandTransfer, 2, transferDataSize)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		From:     ix.Accounts[0].PublicKey,
		To:       ix.Accounts[1].PublicKey,
		Lamports: d.Uint64(),
	}, nil
}

// decode checks the program, command and shape of ix and returns a decoder
// positioned after the command.
func decode(ix solana.Instruction, command uint32, accounts, size int) (*binary.Decoder, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}

	d := binary.NewDecoder(ix.Data)
	if d.Uint32() != command || d.Err() != nil {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) != accounts {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if len(ix.Data) != size {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}
	return d, nil
}
