package cmd

import (
	"os"

	"github.com/mezonai/currency/logx"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	genesisPath string
)

var rootCmd = &cobra.Command{
	Use:   "currency",
	Short: "Fungible balance ledger CLI",
	Long: `Command line interface for inspecting and mutating a local balance ledger.
Every command opens the store configured in the ledger .ini file, applies one
operation and exits.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/ledger.ini", "Path to ledger configuration file")
	rootCmd.PersistentFlags().StringVar(&genesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
