package cmd

import (
	"fmt"

	"github.com/mezonai/currency/config"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/types"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the genesis accounts in the configured store",
	Long: `Initialize the ledger by:
- Loading and validating the genesis file
- Creating every endowed account with its free and reserved balance
- Placing the initial locks
- Recording the initial block number`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeLedger(cmd)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initializeLedger(cmd *cobra.Command) error {
	genesis, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return err
	}
	env, err := openLedger()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.ledger.InitGenesis(genesis); err != nil {
		return err
	}
	if err := env.stores.StateMeta.SetBlockNumber(types.Moment(env.cfg.Ledger.InitialBlock)); err != nil {
		return err
	}

	issuance, err := env.ledger.TotalIssuance()
	if err != nil {
		return err
	}
	logx.Info("CMD", fmt.Sprintf("Genesis applied: %d accounts", len(genesis.Endowed)))
	fmt.Fprintf(cmd.OutOrStdout(), "accounts: %d\ntotal issuance: %s\n", len(genesis.Endowed), types.FormatBalance(issuance))
	return nil
}
