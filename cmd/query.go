package cmd

import (
	"fmt"

	"github.com/mezonai/currency/locks"
	"github.com/mezonai/currency/types"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Show free, reserved and locked balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		acc, err := env.ledger.GetAccount(who)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if acc == nil {
			fmt.Fprintf(out, "%s: no account\n", who)
			return nil
		}
		total, err := acc.Total()
		if err != nil {
			return err
		}
		now := env.ledger.Now()
		fmt.Fprintf(out, "free: %s\nreserved: %s\ntotal: %s\n", types.FormatBalance(acc.Free), types.FormatBalance(acc.Reserved), types.FormatBalance(total))
		fmt.Fprintf(out, "locked (transfer): %s\n", types.FormatBalance(locks.LockedAmount(acc.Locks, types.Transfer, now)))
		for _, l := range acc.Locks {
			state := "active"
			if !l.ActiveAt(now) {
				state = "expired"
			}
			fmt.Fprintf(out, "lock %s: %s until %d [%s] %s\n", l.ID, types.FormatBalance(l.Amount), l.Until, l.Reasons, state)
		}
		return nil
	},
}

var issuanceCmd = &cobra.Command{
	Use:   "issuance",
	Short: "Show total issuance, existential deposit and current block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		issuance, err := env.ledger.TotalIssuance()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total issuance: %s\nexistential deposit: %s\nblock: %d\n",
			types.FormatBalance(issuance), types.FormatBalance(env.ledger.MinimumBalance()), env.ledger.Now())
		return nil
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance <blocks>",
	Short: "Move the ledger clock forward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n uint64
		if _, err := fmt.Sscan(args[0], &n); err != nil {
			return fmt.Errorf("invalid block count %q: %w", args[0], err)
		}
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		now := env.clock.Advance(types.Moment(n))
		if err := env.stores.StateMeta.SetBlockNumber(now); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "block: %d\n", now)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(issuanceCmd)
	rootCmd.AddCommand(advanceCmd)
}
