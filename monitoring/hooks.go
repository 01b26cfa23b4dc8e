package monitoring

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
)

// Hooks records ledger hook invocations as metrics. Compose it into a hooks.Set next to the
// handlers that carry domain logic.
type Hooks struct{}

func (Hooks) OnFreeBalanceZero(types.AccountID) {
	IncreaseReapedAccounts()
}

func (Hooks) OnDilution(minted, _ *uint256.Int) {
	IncreaseDilutionEvents()
}

func (Hooks) OnUnbalancedIncrease(amount *uint256.Int) error {
	RecordMinted(amount)
	return nil
}

func (Hooks) OnUnbalancedDecrease(amount *uint256.Int) error {
	RecordBurned(amount)
	return nil
}
