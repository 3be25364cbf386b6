// Package action runs each forge action end to end: it builds the
// instructions, assembles and signs envelopes, submits them and reports the
// result.
package action

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/forge/instruction"
	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindCreateMint
	KindCreateAssociatedAccount
	KindMintTo
	KindCreateMetadata
	KindTransferWithMemo
)

func (k Kind) String() string {
	switch k {
	case KindCreateMint:
		return "create_mint"
	case KindCreateAssociatedAccount:
		return "create_associated_account"
	case KindMintTo:
		return "mint_to"
	case KindCreateMetadata:
		return "create_metadata"
	case KindTransferWithMemo:
		return "transfer_with_memo"
	}
	return "unknown"
}

// Address names used in Result.Addresses.
const (
	AddressMint              = "mint"
	AddressAssociatedAccount = "associated_account"
	AddressDestination       = "destination"
	AddressMetadata          = "metadata"
	AddressRecipient         = "recipient"
)

// Action is one of the supported operations. The payer is supplied by the
// Orchestrator and acts as fee payer and authority for every action.
type Action interface {
	Kind() Kind

	// plan builds every instruction the action needs. Network reads happen
	// only after the inputs have been validated.
	plan(ctx context.Context, env *planEnv) (*plan, error)
}

type planEnv struct {
	payer *common.Account
	sc    solana.Client
}

// step is a single envelope's worth of work.
type step struct {
	name         string
	instructions []solana.Instruction
	signers      []*common.Account
}

type plan struct {
	steps     []*step
	addresses map[string]*common.Account

	// ephemeral accounts are wiped when the run ends.
	ephemeral []*common.Account

	// Read backs performed once every step has confirmed.
	verifyMint *common.Account
	balanceOf  *common.Account
	lamportsOf *common.Account
}

func (p *plan) release() {
	for _, account := range p.ephemeral {
		account.Wipe()
	}
}

// CreateMint creates a new mint with the payer as mint authority. The mint
// address is a freshly generated key that only signs its creation.
type CreateMint struct {
	Decimals        byte
	FreezeAuthority *common.Account // Optional
}

func (a *CreateMint) Kind() Kind { return KindCreateMint }

func (a *CreateMint) plan(ctx context.Context, env *planEnv) (*plan, error) {
	mint, err := common.NewRandomAccount()
	if err != nil {
		return nil, errors.Wrap(err, "error generating mint key")
	}

	args := &instruction.CreateMintArgs{
		Funder:   env.payer.PublicKey().ToBytes(),
		Mint:     mint.PublicKey().ToBytes(),
		Decimals: a.Decimals,
	}
	if a.FreezeAuthority != nil {
		args.FreezeAuthority = a.FreezeAuthority.PublicKey().ToBytes()
	}

	if _, err := instruction.CreateMint(args); err != nil {
		mint.Wipe()
		return nil, err
	}

	rent, err := env.sc.GetMinimumBalanceForRentExemption(token.MintAccountSize)
	if err != nil {
		mint.Wipe()
		return nil, errors.Wrap(err, "error getting rent exemption for mint")
	}
	args.RentLamports = rent

	instructions, err := instruction.CreateMint(args)
	if err != nil {
		mint.Wipe()
		return nil, err
	}

	return &plan{
		steps: []*step{{
			name:         "create_mint",
			instructions: instructions,
			signers:      []*common.Account{mint},
		}},
		addresses:  map[string]*common.Account{AddressMint: mint},
		ephemeral:  []*common.Account{mint},
		verifyMint: mint,
	}, nil
}

// CreateAssociatedAccount creates the associated token account of Owner for
// Mint. Owner defaults to the payer and must be on the curve unless
// AllowOwnerOffCurve is set.
type CreateAssociatedAccount struct {
	Owner              *common.Account // Optional
	Mint               *common.Account
	AllowOwnerOffCurve bool
}

func (a *CreateAssociatedAccount) Kind() Kind { return KindCreateAssociatedAccount }

func (a *CreateAssociatedAccount) plan(_ context.Context, env *planEnv) (*plan, error) {
	owner := a.Owner
	if owner == nil {
		owner = env.payer
	}

	ix, address, err := instruction.CreateAssociatedAccount(&instruction.CreateAssociatedAccountArgs{
		Payer: env.payer.PublicKey().ToBytes(),
		Owner:              owner.PublicKey().ToBytes(),
		Mint:               keyOf(a.Mint),
		AllowOwnerOffCurve: a.AllowOwnerOffCurve,
	})
	if err != nil {
		return nil, err
	}

	ata, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, err
	}

	return &plan{
		steps: []*step{{
			name:         "create_associated_account",
			instructions: []solana.Instruction{ix},
		}},
		addresses: map[string]*common.Account{AddressAssociatedAccount: ata},
	}, nil
}

// MintTo mints Amount base units of Mint into Destination. When Destination
// is unset the associated token account of Owner is used, and Owner defaults
// to the payer.
type MintTo struct {
	Mint               *common.Account
	Destination        *common.Account // Optional
	Owner              *common.Account // Optional
	Amount             uint64
	AllowOwnerOffCurve bool
}

func (a *MintTo) Kind() Kind { return KindMintTo }

func (a *MintTo) plan(_ context.Context, env *planEnv) (*plan, error) {
	if a.Mint == nil {
		return nil, errors.Wrap(instruction.ErrMissingAccount, "mint")
	}

	destination := a.Destination
	if destination == nil {
		owner := a.Owner
		if owner == nil {
			owner = env.payer
		}

		var err error
		if a.AllowOwnerOffCurve {
			destination, err = owner.ToAssociatedTokenAccountAllowOffCurve(a.Mint)
		} else {
			destination, err = owner.ToAssociatedTokenAccount(a.Mint)
		}
		if err != nil {
			return nil, errors.Wrap(err, "error deriving destination")
		}
	}

	ix, err := instruction.MintTo(&instruction.MintToArgs{
		Mint:        a.Mint.PublicKey().ToBytes(),
		Destination: destination.PublicKey().ToBytes(),
		Authority:   env.payer.PublicKey().ToBytes(),
		Amount:      a.Amount,
	})
	if err != nil {
		return nil, err
	}

	return &plan{
		steps: []*step{{
			name:         "mint_to",
			instructions: []solana.Instruction{ix},
		}},
		addresses: map[string]*common.Account{AddressDestination: destination},
		balanceOf: destination,
	}, nil
}

// CreateMetadata attaches Metaplex metadata to Mint. The payer is the mint
// authority and the update authority.
type CreateMetadata struct {
	Mint                 *common.Account
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	IsMutable            bool
}

func (a *CreateMetadata) Kind() Kind { return KindCreateMetadata }

func (a *CreateMetadata) plan(_ context.Context, env *planEnv) (*plan, error) {
	payer := env.payer.PublicKey().ToBytes()

	ix, address, err := instruction.CreateMetadata(&instruction.CreateMetadataArgs{
		Mint:                 keyOf(a.Mint),
		MintAuthority:        payer,
		Payer:                payer,
		Name:                 a.Name,
		Symbol:               a.Symbol,
		URI:                  a.URI,
		SellerFeeBasisPoints: a.SellerFeeBasisPoints,
		IsMutable:            a.IsMutable,
	})
	if err != nil {
		return nil, err
	}

	metadataAccount, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, err
	}

	return &plan{
		steps: []*step{{
			name:         "create_metadata",
			instructions: []solana.Instruction{ix},
		}},
		addresses: map[string]*common.Account{AddressMetadata: metadataAccount},
	}, nil
}

// TransferWithMemo moves Lamports from the payer to Recipient. A memo, when
// set, is sent in a second transaction once the transfer has confirmed.
type TransferWithMemo struct {
	Recipient *common.Account
	Lamports  uint64
	Memo      string // Optional
}

func (a *TransferWithMemo) Kind() Kind { return KindTransferWithMemo }

func (a *TransferWithMemo) plan(_ context.Context, env *planEnv) (*plan, error) {
	transfer, memoIx, err := instruction.TransferWithMemo(&instruction.TransferWithMemoArgs{
		Sender:    env.payer.PublicKey().ToBytes(),
		Recipient: keyOf(a.Recipient),
		Lamports:  a.Lamports,
		Memo:      a.Memo,
	})
	if err != nil {
		return nil, err
	}

	p := &plan{
		steps: []*step{{
			name:         "transfer",
			instructions: []solana.Instruction{transfer},
		}},
		addresses:  map[string]*common.Account{AddressRecipient: a.Recipient},
		lamportsOf: a.Recipient,
	}
	if memoIx != nil {
		p.steps = append(p.steps, &step{
			name:         "memo",
			instructions: []solana.Instruction{*memoIx},
		})
	}
	return p, nil
}

func keyOf(account *common.Account) []byte {
	if account == nil {
		return nil
	}
	return account.PublicKey().ToBytes()
}
