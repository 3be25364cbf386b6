// Package instruction builds the instruction lists for each forge action.
// Builders are pure: they validate their inputs and never touch the network.
package instruction

import (
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/memo"
	"github.com/tokenforge/tokenforge/pkg/solana/metadata"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

type CreateMintArgs struct {
	// Funder pays for the mint account and becomes its mint authority.
	Funder ed25519.PublicKey
	// Mint is the freshly generated mint address. It must sign.
	Mint            ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey // Optional
	Decimals        byte
	// RentLamports is the rent exempt balance for a mint account.
	RentLamports uint64
}

// CreateMint allocates a mint account owned by the token program and
// initializes it.
func CreateMint(args *CreateMintArgs) ([]solana.Instruction, error) {
	if err := requireKeys(args.Funder, args.Mint); err != nil {
		return nil, err
	}
	if args.Decimals > token.MaxDecimals {
		return nil, errors.Wrapf(ErrInvalidDecimals, "%d exceeds %d", args.Decimals, token.MaxDecimals)
	}

	return []solana.Instruction{
		system.CreateAccount(args.Funder, args.Mint, token.ProgramKey, args.RentLamports, token.MintAccountSize),
		token.InitializeMint(args.Mint, args.Funder, args.FreezeAuthority, args.Decimals),
	}, nil
}

type CreateAssociatedAccountArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// AllowOwnerOffCurve permits owners that are program derived addresses.
	AllowOwnerOffCurve bool
}

// CreateAssociatedAccount creates the associated token account of owner for
// mint and returns its address. The network rejects the instruction if the
// account already exists.
func CreateAssociatedAccount(args *CreateAssociatedAccountArgs) (solana.Instruction, ed25519.PublicKey, error) {
	if err := requireKeys(args.Payer, args.Owner, args.Mint); err != nil {
		return solana.Instruction{}, nil, err
	}
	if !args.AllowOwnerOffCurve && !common.IsOnCurve(args.Owner) {
		return solana.Instruction{}, nil, common.ErrOwnerOffCurve
	}

	ix, address, err := token.CreateAssociatedTokenAccount(args.Payer, args.Owner, args.Mint)
	if err != nil {
		return solana.Instruction{}, nil, errors.Wrap(err, "error deriving associated token account")
	}
	return ix, address, nil
}

type MintToArgs struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	// Amount is in base units, scaled by the mint's decimals.
	Amount uint64
}

func MintTo(args *MintToArgs) (solana.Instruction, error) {
	if err := requireKeys(args.Mint, args.Destination, args.Authority); err != nil {
		return solana.Instruction{}, err
	}
	if args.Amount == 0 {
		return solana.Instruction{}, ErrInvalidAmount
	}

	return token.MintTo(args.Mint, args.Destination, args.Authority, args.Amount), nil
}

type CreateMetadataArgs struct {
	Mint          ed25519.PublicKey
	MintAuthority ed25519.PublicKey
	Payer         ed25519.PublicKey
	// UpdateAuthority defaults to the mint authority.
	UpdateAuthority ed25519.PublicKey

	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	IsMutable            bool
}

// CreateMetadata attaches Metaplex metadata to a mint and returns the
// metadata account address.
func CreateMetadata(args *CreateMetadataArgs) (solana.Instruction, ed25519.PublicKey, error) {
	if err := requireKeys(args.Mint, args.MintAuthority, args.Payer); err != nil {
		return solana.Instruction{}, nil, err
	}

	for _, field := range []struct {
		name  string
		value string
		max   int
	}{
		{"name", args.Name, metadata.MaxNameLength},
		{"symbol", args.Symbol, metadata.MaxSymbolLength},
		{"uri", args.URI, metadata.MaxURILength},
	} {
		if len(field.value) > field.max {
			return solana.Instruction{}, nil, errors.Wrapf(ErrFieldTooLong, "%s is %d bytes, max %d", field.name, len(field.value), field.max)
		}
	}

	if args.SellerFeeBasisPoints > metadata.MaxSellerFeeBasisPoints {
		return solana.Instruction{}, nil, errors.Wrapf(ErrInvalidSellerFee, "%d exceeds %d", args.SellerFeeBasisPoints, metadata.MaxSellerFeeBasisPoints)
	}

	updateAuthority := args.UpdateAuthority
	if len(updateAuthority) == 0 {
		updateAuthority = args.MintAuthority
	}

	ix, address, err := metadata.CreateMetadataAccountV3(
		args.Mint,
		args.MintAuthority,
		args.Payer,
		updateAuthority,
		true,
		metadata.DataV2{
			Name:                 args.Name,
			Symbol:               args.Symbol,
			URI:                  args.URI,
			SellerFeeBasisPoints: args.SellerFeeBasisPoints,
		},
		args.IsMutable,
	)
	if err != nil {
		return solana.Instruction{}, nil, err
	}
	return ix, address, nil
}

type TransferWithMemoArgs struct {
	Sender    ed25519.PublicKey
	Recipient ed25519.PublicKey
	Lamports  uint64
	Memo      string // Optional
}

// TransferWithMemo returns the transfer instruction and, when a memo is set,
// a memo instruction signed by the sender. The two are meant to be submitted
// as separate transactions. When the memo is invalid no instructions are
// returned.
func TransferWithMemo(args *TransferWithMemoArgs) (transfer solana.Instruction, memoIx *solana.Instruction, err error) {
	if err := requireKeys(args.Sender, args.Recipient); err != nil {
		return solana.Instruction{}, nil, err
	}
	if args.Lamports == 0 {
		return solana.Instruction{}, nil, ErrInvalidAmount
	}

	if len(args.Memo) > 0 {
		if len(args.Memo) > memo.MaxMemoSize {
			return solana.Instruction{}, nil, errors.Wrapf(ErrMemoTooLarge, "%d bytes, max %d", len(args.Memo), memo.MaxMemoSize)
		}
		if !utf8.ValidString(args.Memo) {
			return solana.Instruction{}, nil, ErrInvalidMemo
		}

		ix := memo.Instruction(args.Memo, args.Sender)
		memoIx = &ix
	}

	return system.Transfer(args.Sender, args.Recipient, args.Lamports), memoIx, nil
}

func requireKeys(keys ...ed25519.PublicKey) error {
	for i, key := range keys {
		if len(key) != ed25519.PublicKeySize {
			return errors.Wrapf(ErrMissingAccount, "account %d", i)
		}
	}
	return nil
}
