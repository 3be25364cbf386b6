package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tokenforge/tokenforge/pkg/forge/action"
	"github.com/tokenforge/tokenforge/pkg/forge/common"
	"github.com/tokenforge/tokenforge/pkg/solana/token"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tokenforge",
		Short:         "Create and fund SPL tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "config.yaml", "configuration file path")
	flags.Bool("dry-run", false, "build and sign envelopes without submitting them")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("rpc-endpoint", "", "cluster name (devnet, testnet, mainnet) or RPC URL")
	flags.String("commitment", "", "commitment level to wait for (processed, confirmed, finalized)")

	_ = a.v.BindPFlag(action.DryRunConfigName, flags.Lookup("dry-run"))
	_ = a.v.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = a.v.BindPFlag("rpc_endpoint", flags.Lookup("rpc-endpoint"))
	_ = a.v.BindPFlag(action.CommitmentConfigName, flags.Lookup("commitment"))

	root.AddCommand(
		newCreateMintCommand(a),
		newCreateAssociatedAccountCommand(a),
		newMintToCommand(a),
		newCreateMetadataCommand(a),
		newTransferCommand(a),
	)
	return root
}

func newCreateMintCommand(a *app) *cobra.Command {
	var decimals uint8
	var freezeAuthority string

	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a new mint with the payer as mint authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			freeze, err := parseAccount("freeze-authority", freezeAuthority)
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), &action.CreateMint{
				Decimals:        decimals,
				FreezeAuthority: freeze,
			})
		},
	}

	cmd.Flags().Uint8Var(&decimals, "decimals", token.MaxDecimals, "number of decimal places")
	cmd.Flags().StringVar(&freezeAuthority, "freeze-authority", "", "optional freeze authority")
	return cmd
}

func newCreateAssociatedAccountCommand(a *app) *cobra.Command {
	var mint, owner string
	var allowOffCurve bool

	cmd := &cobra.Command{
		Use:   "create-ata",
		Short: "Create the associated token account of an owner for a mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := parseAccounts(map[string]string{"mint": mint, "owner": owner})
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), &action.CreateAssociatedAccount{
				Mint:               accounts["mint"],
				Owner:              accounts["owner"],
				AllowOwnerOffCurve: allowOffCurve,
			})
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "mint address")
	cmd.Flags().StringVar(&owner, "owner", "", "owner of the account, defaults to the payer")
	cmd.Flags().BoolVar(&allowOffCurve, "allow-owner-off-curve", false, "allow a program derived address as owner")
	_ = cmd.MarkFlagRequired("mint")
	return cmd
}

func newMintToCommand(a *app) *cobra.Command {
	var mint, destination, owner string
	var amount uint64
	var allowOffCurve bool

	cmd := &cobra.Command{
		Use:   "mint-to",
		Short: "Mint tokens into a token account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(destination) > 0 && len(owner) > 0 {
				return errors.New("only one of destination and owner may be set")
			}

			accounts, err := parseAccounts(map[string]string{
				"mint":        mint,
				"destination": destination,
				"owner":       owner,
			})
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), &action.MintTo{
				Mint:               accounts["mint"],
				Destination:        accounts["destination"],
				Owner:              accounts["owner"],
				Amount:             amount,
				AllowOwnerOffCurve: allowOffCurve,
			})
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "mint address")
	cmd.Flags().StringVar(&destination, "destination", "", "token account to mint into")
	cmd.Flags().StringVar(&owner, "owner", "", "mint into the associated account of this owner, defaults to the payer")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "amount in base units")
	cmd.Flags().BoolVar(&allowOffCurve, "allow-owner-off-curve", false, "allow a program derived address as owner")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newCreateMetadataCommand(a *app) *cobra.Command {
	var mint, name, symbol, uri string
	var sellerFee uint16
	var immutable bool

	cmd := &cobra.Command{
		Use:   "create-metadata",
		Short: "Attach token metadata to a mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mintAccount, err := parseAccount("mint", mint)
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), &action.CreateMetadata{
				Mint:                 mintAccount,
				Name:                 name,
				Symbol:               symbol,
				URI:                  uri,
				SellerFeeBasisPoints: sellerFee,
				IsMutable:            !immutable,
			})
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "mint address")
	cmd.Flags().StringVar(&name, "name", "", "token name")
	cmd.Flags().StringVar(&symbol, "symbol", "", "token symbol")
	cmd.Flags().StringVar(&uri, "uri", "", "URI of the off-chain metadata")
	cmd.Flags().Uint16Var(&sellerFee, "seller-fee-basis-points", 0, "royalty in basis points")
	cmd.Flags().BoolVar(&immutable, "immutable", false, "disallow future metadata updates")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newTransferCommand(a *app) *cobra.Command {
	var to, memo string
	var lamports uint64

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer SOL, optionally followed by a memo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipient, err := parseAccount("to", to)
			if err != nil {
				return err
			}

			return a.execute(cmd.Context(), &action.TransferWithMemo{
				Recipient: recipient,
				Lamports:  lamports,
				Memo:      memo,
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().Uint64Var(&lamports, "lamports", 0, "amount in lamports")
	cmd.Flags().StringVar(&memo, "memo", "", "memo sent after the transfer confirms")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("lamports")
	return cmd
}

// parseAccount decodes a base58 address. An empty value yields nil.
func parseAccount(name, value string) (*common.Account, error) {
	if len(value) == 0 {
		return nil, nil
	}

	account, err := common.NewAccountFromPublicKeyString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return account, nil
}

func parseAccounts(values map[string]string) (map[string]*common.Account, error) {
	accounts := make(map[string]*common.Account, len(values))
	for name, value := range values {
		account, err := parseAccount(name, value)
		if err != nil {
			return nil, err
		}
		accounts[name] = account
	}
	return accounts, nil
}
