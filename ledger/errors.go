package ledger

import (
	"errors"
	"fmt"

	"github.com/mezonai/currency/types"
)

var (
	// ErrLiquidityRestrictions is returned when an active lock covers funds a withdrawal needs.
	ErrLiquidityRestrictions = errors.New("account liquidity restrictions prevent withdrawal")
	// ErrWouldKillAccount is returned by a KeepAlive withdrawal that would leave the free
	// balance below the existential deposit.
	ErrWouldKillAccount = errors.New("withdrawal would kill account")
	ErrAccountNotFound  = errors.New("account not found")
	// ErrBeneficiaryNotFound is ErrAccountNotFound for the receiving side of a repatriation.
	ErrBeneficiaryNotFound = fmt.Errorf("beneficiary: %w", ErrAccountNotFound)
	ErrOverflow            = types.ErrOverflow
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrBelowExistentialDeposit is returned when a transfer would create an account with less
	// than the existential deposit.
	ErrBelowExistentialDeposit = errors.New("value below existential deposit")
)
