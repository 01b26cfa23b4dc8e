package cmd

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
	"github.com/spf13/cobra"
)

var reservedOnly bool

// accountAmountCmd builds a command taking <address> <amount> that runs op on an open ledger.
func accountAmountCmd(use, short string, op func(env *ledgerEnv, who types.AccountID, amount *uint256.Int) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			env, err := openLedger()
			if err != nil {
				return err
			}
			defer env.Close()

			msg, err := op(env, who, amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func describeRemaining(verb string, requested, remaining *uint256.Int) string {
	if remaining == nil {
		return fmt.Sprintf("%s %s", verb, types.FormatBalance(requested))
	}
	done := new(uint256.Int).Sub(requested, remaining)
	return fmt.Sprintf("%s %s, remaining %s", verb, types.FormatBalance(done), types.FormatBalance(remaining))
}

var reserveCmd = accountAmountCmd("reserve", "Move free balance to reserved", func(env *ledgerEnv, who types.AccountID, amount *uint256.Int) (string, error) {
	if err := env.ledger.Reserve(who, amount); err != nil {
		return "", err
	}
	return "reserved " + types.FormatBalance(amount), nil
})

var unreserveCmd = accountAmountCmd("unreserve", "Move up to amount of reserved balance back to free", func(env *ledgerEnv, who types.AccountID, amount *uint256.Int) (string, error) {
	remaining, err := env.ledger.Unreserve(who, amount)
	if err != nil {
		return "", err
	}
	return describeRemaining("unreserved", amount, remaining), nil
})

var slashCmd = accountAmountCmd("slash", "Destroy up to amount, free balance first", func(env *ledgerEnv, who types.AccountID, amount *uint256.Int) (string, error) {
	slash := env.ledger.Slash
	if reservedOnly {
		slash = env.ledger.SlashReserved
	}
	remaining, err := slash(who, amount)
	if err != nil {
		return "", err
	}
	return describeRemaining("slashed", amount, remaining), nil
})

var repatriateCmd = &cobra.Command{
	Use:   "repatriate <from> <to> <amount>",
	Short: "Move up to amount from the reserved balance of one account to the free balance of another",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		to, err := parseAddress(args[1])
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		remaining, err := env.ledger.RepatriateReserved(from, to, amount)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), describeRemaining("repatriated", amount, remaining))
		return nil
	},
}

func init() {
	slashCmd.Flags().BoolVar(&reservedOnly, "reserved", false, "slash the reserved balance only")

	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(unreserveCmd)
	rootCmd.AddCommand(slashCmd)
	rootCmd.AddCommand(repatriateCmd)
}
