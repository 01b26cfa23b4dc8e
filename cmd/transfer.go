package cmd

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/hooks"
	"github.com/mezonai/currency/jsonx"
	"github.com/mezonai/currency/ledger"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/types"
	"github.com/mezonai/currency/utils"
	"github.com/spf13/cobra"
)

type TransferConfig struct {
	From       string
	To         string
	Amount     string
	FeePerByte string
	AllowDeath bool
}

var transferConfig TransferConfig

// transferCall is the encoded form of a transfer; its length is what fees are charged on.
type transferCall struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Liveness string `json:"liveness"`
}

var transferCmd = &cobra.Command{
	Use:   "transfer [flags]",
	Short: "Transfer free balance to another account",
	Long: `This command moves free balance from one account to another, creating the
recipient if needed. When --fee-per-byte is set the sender first pays a fee
proportional to the encoded call, which is burned.

Examples:
  # Transfer 1000 units, keeping the sender alive
  transfer -f 3x9az88Dkbxa6tkKByxqEn7jBTJCJCD4dVvou49L24ET -t 9jLkNAaW9E47LQMHvjohy2uAAyr1331bAxgJKFRU7wF6 -a 1_000

  # Empty the sender account entirely
  transfer -f <from> -t <to> -a 500 --allow-death`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transfer(cmd, transferConfig)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringVarP(&transferConfig.From, "from", "f", "", "address of sender")
	transferCmd.Flags().StringVarP(&transferConfig.To, "to", "t", "", "address of recipient")
	transferCmd.Flags().StringVarP(&transferConfig.Amount, "amount", "a", "", "amount")
	transferCmd.Flags().StringVar(&transferConfig.FeePerByte, "fee-per-byte", "0", "fee charged per byte of the encoded call")
	transferCmd.Flags().BoolVar(&transferConfig.AllowDeath, "allow-death", false, "allow the sender account to be reaped")
}

// perByteFee charges perByte for every byte of the call, withdrawn as a transaction payment
// that must keep the payer alive.
type perByteFee struct {
	ledger  *ledger.Ledger
	perByte *uint256.Int
}

func (p *perByteFee) MakePayment(who types.AccountID, encodedLen int) error {
	if p.perByte.IsZero() {
		return nil
	}
	fee := new(uint256.Int).Mul(p.perByte, uint256.NewInt(uint64(encodedLen)))
	reasons := types.NewWithdrawReasons(types.TransactionPayment, types.Fee)
	if err := p.ledger.Withdraw(who, fee, reasons, types.KeepAlive); err != nil {
		return fmt.Errorf("fee of %s: %w", fee.Dec(), err)
	}
	return nil
}

func transfer(cmd *cobra.Command, cfg TransferConfig) error {
	from, err := parseAddress(cfg.From)
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	to, err := parseAddress(cfg.To)
	if err != nil {
		return fmt.Errorf("recipient: %w", err)
	}
	amount, err := parseAmount(cfg.Amount)
	if err != nil {
		return err
	}
	perByte, err := types.ParseBalance(cfg.FeePerByte)
	if err != nil {
		return fmt.Errorf("fee-per-byte: %w", err)
	}

	env, err := openLedger()
	if err != nil {
		return err
	}
	defer env.Close()

	live := liveness(cfg.AllowDeath)
	call, err := jsonx.Marshal(transferCall{From: string(from), To: string(to), Amount: amount.Dec(), Liveness: live.String()})
	if err != nil {
		return err
	}

	// fee and transfer are staged together so a failed transfer costs nothing
	fee := &perByteFee{perByte: perByte}
	staged, overlay, err := env.stage(hooks.Set{Payment: fee})
	if err != nil {
		return err
	}
	fee.ledger = staged
	if err := staged.MakePayment(from, len(call)); err != nil {
		overlay.Discard()
		return err
	}
	if err := staged.Transfer(from, to, amount, live); err != nil {
		overlay.Discard()
		return err
	}
	if err := overlay.Commit(); err != nil {
		return err
	}

	logx.Info("TRANSFER CLI", fmt.Sprintf("Transferred %s from %s to %s", amount.Dec(), utils.ShortenLog(string(from)), utils.ShortenLog(string(to))))
	fmt.Fprintf(cmd.OutOrStdout(), "transferred %s\n", types.FormatBalance(amount))
	return nil
}
