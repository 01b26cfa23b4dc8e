package hooks

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
)

// Composite hooks call every member in slice order. Members of the error-returning chains are
// all invoked even after a failure; the failures are joined.

type FreeBalanceZeroChain []OnFreeBalanceZero

func (c FreeBalanceZeroChain) OnFreeBalanceZero(who types.AccountID) {
	for _, h := range c {
		h.OnFreeBalanceZero(who)
	}
}

type DilutionChain []OnDilution

func (c DilutionChain) OnDilution(minted, portion *uint256.Int) {
	for _, h := range c {
		h.OnDilution(minted.Clone(), portion.Clone())
	}
}

type IncreaseChain []OnUnbalancedIncrease

func (c IncreaseChain) OnUnbalancedIncrease(amount *uint256.Int) error {
	var errs []error
	for _, h := range c {
		if err := h.OnUnbalancedIncrease(amount.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type DecreaseChain []OnUnbalancedDecrease

func (c DecreaseChain) OnUnbalancedDecrease(amount *uint256.Int) error {
	var errs []error
	for _, h := range c {
		if err := h.OnUnbalancedDecrease(amount.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type PaymentChain []MakePayment

func (c PaymentChain) MakePayment(who types.AccountID, encodedLen int) error {
	var errs []error
	for _, h := range c {
		if err := h.MakePayment(who, encodedLen); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Function adapters.

type FreeBalanceZeroFunc func(who types.AccountID)

func (f FreeBalanceZeroFunc) OnFreeBalanceZero(who types.AccountID) { f(who) }

type DilutionFunc func(minted, portion *uint256.Int)

func (f DilutionFunc) OnDilution(minted, portion *uint256.Int) { f(minted, portion) }

type IncreaseFunc func(amount *uint256.Int) error

func (f IncreaseFunc) OnUnbalancedIncrease(amount *uint256.Int) error { return f(amount) }

type DecreaseFunc func(amount *uint256.Int) error

func (f DecreaseFunc) OnUnbalancedDecrease(amount *uint256.Int) error { return f(amount) }

type PaymentFunc func(who types.AccountID, encodedLen int) error

func (f PaymentFunc) MakePayment(who types.AccountID, encodedLen int) error { return f(who, encodedLen) }
