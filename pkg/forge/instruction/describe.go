package instruction

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/tokenforge/tokenforge/pkg/solana"
	"github.com/tokenforge/tokenforge/pkg/solana/memo"
	"github.com/tokenforge/tokenforge/pkg/solana/metadata"
	"github.com/tokenforge/tokenforge/pkg/solana/system"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

// Describe renders a human readable summary of an instruction produced by
// one of the builders. Unknown instructions are rendered by program only.
func Describe(ix solana.Instruction) string {
	switch {
	case bytes.Equal(ix.Program, system.ProgramKey):
		if d, err := system.DecompileCreateAccount(ix); err == nil {
			return fmt.Sprintf("system::CreateAccount(funder=%s, address=%s, owner=%s, lamports=%d, size=%d)",
				encode(d.Funder), encode(d.Address), encode(d.Owner), d.Lamports, d.Size)
		}
		if d, err := system.DecompileTransfer(ix); err == nil {
			return fmt.Sprintf("system::Transfer(from=%s, to=%s, lamports=%d)", encode(d.From), encode(d.To), d.Lamports)
		}
	case bytes.Equal(ix.Program, token.ProgramKey):
		if d, err := token.DecompileInitializeMint(ix); err == nil {
			freeze := "none"
			if d.FreezeAuthority != nil {
				freeze = encode(d.FreezeAuthority)
			}
			return fmt.Sprintf("token::InitializeMint(mint=%s, decimals=%d, authority=%s, freeze=%s)",
				encode(d.Mint), d.Decimals, encode(d.MintAuthority), freeze)
		}
		if d, err := token.DecompileMintTo(ix); err == nil {
			return fmt.Sprintf("token::MintTo(mint=%s, destination=%s, authority=%s, amount=%d)",
				encode(d.Mint), encode(d.Destination), encode(d.Authority), d.Amount)
		}
	case bytes.Equal(ix.Program, token.AssociatedTokenAccountProgramKey):
		if d, err := token.DecompileCreateAssociatedAccount(ix); err == nil {
			return fmt.Sprintf("associated_token::Create(address=%s, owner=%s, mint=%s)",
				encode(d.Address), encode(d.Owner), encode(d.Mint))
		}
	case bytes.Equal(ix.Program, metadata.ProgramKey):
		if d, err := metadata.DecompileCreateMetadataAccountV3(ix); err == nil {
			return fmt.Sprintf("metadata::CreateMetadataAccountV3(metadata=%s, mint=%s, name=%q, symbol=%q, uri=%q, mutable=%t)",
				encode(d.Metadata), encode(d.Mint), d.Data.Name, d.Data.Symbol, d.Data.URI, d.IsMutable)
		}
	case bytes.Equal(ix.Program, memo.ProgramKey):
		if d, err := memo.DecompileMemo(ix); err == nil {
			return fmt.Sprintf("memo::Memo(%q)", d.Data)
		}
	}

	return fmt.Sprintf("%s::<%d bytes>", encode(ix.Program), len(ix.Data))
}

func encode(b []byte) string {
	return base58.Encode(b)
}
