package cmd

import (
	"fmt"

	"github.com/mezonai/currency/snapshot"
	"github.com/spf13/cobra"
)

var snapshotDir string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import the full ledger state",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Write every account and the total issuance to a JSON snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		path, err := snapshot.WriteSnapshot(snapshotDir, env.ledger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshot: %s\n", path)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Load a snapshot into an empty store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := snapshot.ReadSnapshot(args[0])
		if err != nil {
			return err
		}
		env, err := openLedger()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := snapshot.Restore(env.stores, file); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d accounts at block %d\n", len(file.Accounts), file.Meta.Block)
		return nil
	},
}

func init() {
	snapshotSaveCmd.Flags().StringVar(&snapshotDir, "dir", "./snapshots", "directory the snapshot is written to")
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	rootCmd.AddCommand(snapshotCmd)
}
