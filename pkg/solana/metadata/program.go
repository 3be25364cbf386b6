// Package metadata builds instructions for the Metaplex token metadata
// program.
package metadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
)

// ProgramKey is the address of the token metadata program.
//
// Current key: metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s
var ProgramKey = ed25519.PublicKey{11, 112, 101, 177, 227, 209, 124, 69, 56, 157, 82, 127, 107, 4, 195, 205, 88, 184, 108, 115, 26, 160, 253, 181, 73, 182, 209, 188, 3, 248, 41, 70}

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/state/mod.rs
const (
	MaxNameLength           = 32
	MaxSymbolLength         = 10
	MaxURILength            = 200
	MaxCreatorLimit         = 5
	MaxSellerFeeBasisPoints = 10000
)

const (
	commandCreateMetadataAccountV3 uint8 = 33

	seedPrefix = "metadata"
)

// GetMetadataAddress returns the metadata account of mint.
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		ProgramKey,
		[]byte(seedPrefix),
		ProgramKey,
		mint,
	)
}

type Creator struct {
	Address  [ed25519.PublicKeySize]byte
	Verified bool
	Share    uint8
}

type Collection struct {
	Verified bool
	Key      [ed25519.PublicKeySize]byte
}

type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// DataV2 is the on chain description of a token. Nil options are encoded
// as absent.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
	Collection           *Collection
	Uses                 *Uses
}

type CollectionDetailsV1 struct {
	Size uint64
}

type CollectionDetails struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   CollectionDetailsV1
}

type createMetadataAccountV3Args struct {
	Command           uint8
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

// CreateMetadataAccountV3 creates the metadata account of mint. The mint
// authority and payer must sign. The update authority signs when
// updateAuthorityIsSigner is set.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/instruction/metadata.rs
func CreateMetadataAccountV3(
	mint, mintAuthority, payer, updateAuthority ed25519.PublicKey,
	updateAuthorityIsSigner bool,
	data DataV2,
	isMutable bool,
) (solana.Instruction, ed25519.PublicKey, error) {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Metadata key (pda of ['metadata', program id, mint id])
	//   1. `[]` Mint of token asset
	//   2. `[signer]` Mint authority
	//   3. `[signer, writable]` payer
	//   4. `[]` update authority info
	//   5. `[]` System program
	//   6. `[]` Rent info
	address, err := GetMetadataAddress(mint)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	payload, err := borsh.Serialize(createMetadataAccountV3Args{
		Command:   commandCreateMetadataAccountV3,
		Data:      data,
		IsMutable: isMutable,
	})
	if err != nil {
		return solana.Instruction{}, nil, errors.Wrap(err, "failed to serialize metadata")
	}

	return solana.NewInstruction(
		ProgramKey,
		payload,
		solana.NewAccountMeta(address, false),
		solana.NewReadonlyAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(mintAuthority, true),
		solana.NewAccountMeta(payer, true),
		solana.NewReadonlyAccountMeta(updateAuthority, updateAuthorityIsSigner),
		solana.NewReadonlyAccountMeta(system.ProgramKey, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	), address, nil
}

type DecompiledCreateMetadataAccountV3 struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey

	Data      DataV2
	IsMutable bool
}

func DecompileCreateMetadataAccountV3(ix solana.Instruction) (*DecompiledCreateMetadataAccountV3, error) {
	if !bytes.Equal(ix.Program, ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 || ix.Data[0] != commandCreateMetadataAccountV3 {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) < 6 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	if !bytes.Equal(ix.Accounts[5].PublicKey, system.ProgramKey) {
		return nil, errors.Errorf("system program key mismatch")
	}

	var args createMetadataAccountV3Args
	if err := borsh.Deserialize(&args, ix.Data); err != nil {
		return nil, errors.Wrap(err, "invalid instruction data")
	}

	return &DecompiledCreateMetadataAccountV3{
		Metadata:        ix.Accounts[0].PublicKey,
		Mint:            ix.Accounts[1].PublicKey,
		MintAuthority:   ix.Accounts[2].PublicKey,
		Payer:           ix.Accounts[3].PublicKey,
		UpdateAuthority: ix.Accounts[4].PublicKey,
		Data:            args.Data,
		IsMutable:       args.IsMutable,
	}, nil
}
