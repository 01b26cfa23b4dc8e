package cmd

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
	"github.com/spf13/cobra"
)

var (
	lockUntil   uint64
	lockReasons string
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Manage liquidity locks on an account",
}

func lockSetCmd(use, short string, apply func(env *ledgerEnv, id types.LockIdentifier, who types.AccountID, amount *uint256.Int, until types.Moment, reasons types.WithdrawReasons) error) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <address> <lock-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			id, err := types.ParseLockIdentifier(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			reasons, err := types.ParseWithdrawReasons(strings.Split(lockReasons, ","))
			if err != nil {
				return err
			}
			if reasons.IsEmpty() {
				return fmt.Errorf("at least one withdraw reason is required")
			}
			env, err := openLedger()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := apply(env, id, who, amount, types.Moment(lockUntil), reasons); err != nil {
				return err
			}
			locked, err := env.ledger.LockedAmount(who, reasons, env.ledger.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lock %s: locked for %s now %s\n", id, reasons, types.FormatBalance(locked))
			return nil
		},
	}
	c.Flags().Uint64Var(&lockUntil, "until", 0, "block at which the lock expires")
	c.Flags().StringVar(&lockReasons, "reasons", "all", "comma separated withdraw reasons (transaction_payment,transfer,reserve,fee,all)")
	return c
}

var lockRemoveCmd = &cobra.Command{
	Use:   "remove <address> <lock-id>",
	Short: "Remove a lock",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		id, err := types.ParseLockIdentifier(args[1])
		if err != nil {
			return err
		}
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.ledger.RemoveLock(id, who); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "lock %s removed\n", id)
		return nil
	},
}

var lockPruneCmd = &cobra.Command{
	Use:   "prune <address>",
	Short: "Drop locks that have expired at the current block",
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

		removed, err := env.ledger.PruneLocks(who)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d locks\n", removed)
		return nil
	},
}

func init() {
	lockCmd.AddCommand(lockSetCmd("set", "Create or overwrite a lock", func(env *ledgerEnv, id types.LockIdentifier, who types.AccountID, amount *uint256.Int, until types.Moment, reasons types.WithdrawReasons) error {
		return env.ledger.SetLock(id, who, amount, until, reasons)
	}))
	lockCmd.AddCommand(lockSetCmd("extend", "Make a lock at least as restrictive as requested", func(env *ledgerEnv, id types.LockIdentifier, who types.AccountID, amount *uint256.Int, until types.Moment, reasons types.WithdrawReasons) error {
		return env.ledger.ExtendLock(id, who, amount, until, reasons)
	}))
	lockCmd.AddCommand(lockRemoveCmd)
	lockCmd.AddCommand(lockPruneCmd)
	rootCmd.AddCommand(lockCmd)
}
