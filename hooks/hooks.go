// Package hooks defines the callbacks the ledger drives on balance events. Every capability
// has a no-op variant (Noop), a function adapter and an ordered composite that satisfies the
// same interface, so compositions nest.
package hooks

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
)

// OnFreeBalanceZero is told when an account has been reaped.
type OnFreeBalanceZero interface {
	OnFreeBalanceZero(who types.AccountID)
}

// OnDilution is told that some portion of the total balance grew by minted. portion is the
// pre-growth amount.
type OnDilution interface {
	OnDilution(minted, portion *uint256.Int)
}

// OnUnbalancedIncrease handles funds created without a matching decrease elsewhere.
// An error signals a broken invariant and is returned to the ledger's caller.
type OnUnbalancedIncrease interface {
	OnUnbalancedIncrease(amount *uint256.Int) error
}

// OnUnbalancedDecrease handles funds destroyed without a matching increase elsewhere
// (slashes, withdrawals, dust).
type OnUnbalancedDecrease interface {
	OnUnbalancedDecrease(amount *uint256.Int) error
}

// MakePayment charges who for a call of encodedLen bytes. The ledger never charges on its own;
// callers decide when to go through Ledger.MakePayment.
type MakePayment interface {
	MakePayment(who types.AccountID, encodedLen int) error
}

// Noop implements every hook and does nothing.
type Noop struct{}

func (Noop) OnFreeBalanceZero(types.AccountID) {}
func (Noop) OnDilution(_, _ *uint256.Int) {}
func (Noop) OnUnbalancedIncrease(*uint256.Int) error { return nil }
func (Noop) OnUnbalancedDecrease(*uint256.Int) error { return nil }
func (Noop) MakePayment(types.AccountID, int) error { return nil }

// Set bundles one handler per capability.
type Set struct {
	FreeBalanceZero OnFreeBalanceZero
	Dilution        OnDilution
	Increase        OnUnbalancedIncrease
	Decrease        OnUnbalancedDecrease
	Payment         MakePayment
}

// Default returns a set where every capability is a no-op.
func Default() Set {
	return Set{
		FreeBalanceZero: Noop{},
		Dilution:        Noop{},
		Increase:        Noop{},
		Decrease:        Noop{},
		Payment:         Noop{},
	}
}

// WithDefaults fills unset capabilities with Noop.
func (s Set) WithDefaults() Set {
	if s.FreeBalanceZero == nil {
		s.FreeBalanceZero = Noop{}
	}
	if s.Dilution == nil {
		s.Dilution = Noop{}
	}
	if s.Increase == nil {
		s.Increase = Noop{}
	}
	if s.Decrease == nil {
		s.Decrease = Noop{}
	}
	if s.Payment == nil {
		s.Payment = Noop{}
	}
	return s
}

// Merge composes s and other member-wise; s's handlers run first.
func (s Set) Merge(other Set) Set {
	s = s.WithDefaults()
	other = other.WithDefaults()
	return Set{
		FreeBalanceZero: FreeBalanceZeroChain{s.FreeBalanceZero, other.FreeBalanceZero},
		Dilution:        DilutionChain{s.Dilution, other.Dilution},
		Increase:        IncreaseChain{s.Increase, other.Increase},
		Decrease:        DecreaseChain{s.Decrease, other.Decrease},
		Payment:         PaymentChain{s.Payment, other.Payment},
	}
}
