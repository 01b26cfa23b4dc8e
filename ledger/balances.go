package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/events"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/monitoring"
	"github.com/mezonai/currency/types"
	"github.com/mezonai/currency/utils"
)

// remainingOrNil returns nil when an operation was fully satisfied.
func remainingOrNil(v *uint256.Int) *uint256.Int {
	if v == nil || v.IsZero() {
		return nil
	}
	return v
}

func (l *Ledger) rejectWithdrawal(who types.AccountID, reason monitoring.WithdrawRejectedReason, err error) error {
	logx.Warn("LEDGER", fmt.Sprintf("Rejected withdrawal from %s: %v", utils.ShortenLog(string(who)), err))
	monitoring.IncreaseRejectedWithdrawal(reason)
	return fmt.Errorf("account %s: %w", who, err)
}

// Slash removes up to value from who, free balance first, then reserved. Locks are ignored.
// The returned remainder is the part that could not be slashed, nil if none.
func (l *Ledger) Slash(who types.AccountID, value *uint256.Int) (*uint256.Int, error) {
	remaining := value.Clone()
	err := l.update("slash", func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil || acc == nil || value.IsZero() {
			return err
		}

		fromFree := types.MinBalance(value, acc.Free)
		acc.Free.Sub(acc.Free, fromFree)
		fromReserved := types.MinBalance(new(uint256.Int).Sub(value, fromFree), acc.Reserved)
		acc.Reserved.Sub(acc.Reserved, fromReserved)

		slashed := new(uint256.Int).Add(fromFree, fromReserved)
		remaining = new(uint256.Int).Sub(value, slashed)
		if slashed.IsZero() {
			return nil
		}
		if err := s.burn(slashed); err != nil {
			return err
		}
		s.onDecrease(slashed)
		s.emit(events.NewBalanceEvent(events.EventSlashed, who, s.now, slashed).WithRemaining(remainingOrNil(remaining)))
		return s.settle(acc)
	})
	if err != nil {
		return nil, err
	}
	return remainingOrNil(remaining), nil
}

// Reward mints value into the free balance of an existing account.
func (l *Ledger) Reward(who types.AccountID, value *uint256.Int) error {
	return l.update("reward", func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("reward %s: %w", who, ErrAccountNotFound)
		}
		if value.IsZero() {
			return nil
		}

		newFree, err := types.CheckedAdd(acc.Free, value)
		if err != nil {
			return fmt.Errorf("reward %s: %w", who, err)
		}
		before, err := s.totalIssuance()
		if err != nil {
			return err
		}
		before = before.Clone()
		if err := s.mint(value); err != nil {
			return err
		}
		acc.Free = newFree
		s.onIncrease(value)
		s.onDilution(value, before)
		s.emit(events.NewBalanceEvent(events.EventRewarded, who, s.now, value))
		return s.settle(acc)
	})
}

// Withdraw removes value from the free balance for the given reasons. The funds are destroyed.
func (l *Ledger) Withdraw(who types.AccountID, value *uint256.Int, reasons types.WithdrawReasons, liveness types.ExistenceRequirement) error {
	return l.update("withdraw", func(s *session) error {
		if value.IsZero() {
			return nil
		}
		acc, err := s.loadForRead(who)
		if err != nil {
			return err
		}
		if acc == nil {
			return l.rejectWithdrawal(who, monitoring.WithdrawInsufficientBalance, ErrInsufficientBalance)
		}
		if reason, err := l.checkWithdraw(acc, value, reasons, liveness, s.now); err != nil {
			return l.rejectWithdrawal(who, reason, err)
		}

		acc.Free.Sub(acc.Free, value)
		if err := s.burn(value); err != nil {
			return err
		}
		s.onDecrease(value)
		s.emit(events.NewBalanceEvent(events.EventWithdrawn, who, s.now, value))
		return s.settle(acc)
	})
}

// IncreaseFreeBalanceCreating credits value to who, creating the account if needed. If the
// resulting free balance would be below the existential deposit nothing changes and
// AccountKilled is returned.
func (l *Ledger) IncreaseFreeBalanceCreating(who types.AccountID, value *uint256.Int) (types.UpdateBalanceOutcome, error) {
	outcome := types.Updated
	err := l.update("deposit", func(s *session) error {
		acc, err := s.loadOrCreate(who)
		if err != nil {
			return err
		}
		newFree, err := types.CheckedAdd(acc.Free, value)
		if err != nil {
			return fmt.Errorf("deposit to %s: %w", who, err)
		}
		if newFree.Lt(l.existentialDeposit) {
			outcome = types.AccountKilled
			return nil
		}
		if value.IsZero() {
			return nil
		}

		if err := s.mint(value); err != nil {
			return err
		}
		acc.Free = newFree
		s.onIncrease(value)
		kind := events.EventDeposited
		if !s.existed[who] {
			kind = events.EventEndowed
		}
		s.emit(events.NewBalanceEvent(kind, who, s.now, value))
		return s.settle(acc)
	})
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Reserve moves value from free to reserved. It fails without effect if the free balance or
// the locks applicable to Reserve do not allow it.
func (l *Ledger) Reserve(who types.AccountID, value *uint256.Int) error {
	return l.update("reserve", func(s *session) error {
		if value.IsZero() {
			return nil
		}
		acc, err := s.loadForRead(who)
		if err != nil {
			return err
		}
		if acc == nil {
			return l.rejectWithdrawal(who, monitoring.WithdrawInsufficientBalance, ErrInsufficientBalance)
		}
		if reason, err := l.checkWithdraw(acc, value, types.Reserve, types.AllowDead, s.now); err != nil {
			return l.rejectWithdrawal(who, reason, err)
		}
		newReserved, err := types.CheckedAdd(acc.Reserved, value)
		if err != nil {
			return fmt.Errorf("reserve %s: %w", who, err)
		}

		acc.Free.Sub(acc.Free, value)
		acc.Reserved = newReserved
		s.emit(events.NewBalanceEvent(events.EventReserved, who, s.now, value))
		return s.settle(acc)
	})
}

// Unreserve moves up to value from reserved back to free and returns what could not be moved.
// Reserved dust left behind is burned, never credited to free.
func (l *Ledger) Unreserve(who types.AccountID, value *uint256.Int) (*uint256.Int, error) {
	var remaining *uint256.Int
	err := l.update("unreserve", func(s *session) (err error) {
		remaining, err = s.unreserve(who, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return remainingOrNil(remaining), nil
}

func (s *session) unreserve(who types.AccountID, value *uint256.Int) (*uint256.Int, error) {
	acc, err := s.loadForRead(who)
	if err != nil {
		return nil, err
	}
	if acc == nil || value.IsZero() {
		return value.Clone(), nil
	}

	actual := types.MinBalance(value, acc.Reserved)
	newFree, err := types.CheckedAdd(acc.Free, actual)
	if err != nil {
		return nil, fmt.Errorf("unreserve %s: %w", who, err)
	}
	acc.Reserved.Sub(acc.Reserved, actual)
	acc.Free = newFree

	remaining := new(uint256.Int).Sub(value, actual)
	if actual.IsZero() {
		return remaining, nil
	}
	s.emit(events.NewBalanceEvent(events.EventUnreserved, who, s.now, actual).WithRemaining(remainingOrNil(remaining)))
	return remaining, s.settle(acc)
}

// SlashReserved removes up to value from the reserved balance only.
func (l *Ledger) SlashReserved(who types.AccountID, value *uint256.Int) (*uint256.Int, error) {
	remaining := value.Clone()
	err := l.update("slash_reserved", func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil || acc == nil || value.IsZero() {
			return err
		}

		slashed := types.MinBalance(value, acc.Reserved)
		acc.Reserved.Sub(acc.Reserved, slashed)
		remaining = new(uint256.Int).Sub(value, slashed)
		if slashed.IsZero() {
			return nil
		}
		if err := s.burn(slashed); err != nil {
			return err
		}
		s.onDecrease(slashed)
		s.emit(events.NewBalanceEvent(events.EventSlashed, who, s.now, slashed).WithRemaining(remainingOrNil(remaining)))
		return s.settle(acc)
	})
	if err != nil {
		return nil, err
	}
	return remainingOrNil(remaining), nil
}

// RepatriateReserved moves up to value from the reserved balance of slashed to the free
// balance of beneficiary, which must exist. Repatriating to oneself is Unreserve.
func (l *Ledger) RepatriateReserved(slashed, beneficiary types.AccountID, value *uint256.Int) (*uint256.Int, error) {
	var remaining *uint256.Int
	err := l.update("repatriate_reserved", func(s *session) error {
		to, err := s.loadForRead(beneficiary)
		if err != nil {
			return err
		}
		if to == nil {
			return fmt.Errorf("repatriate to %s: %w", beneficiary, ErrBeneficiaryNotFound)
		}
		if slashed == beneficiary {
			remaining, err = s.unreserve(slashed, value)
			return err
		}
		from, err := s.loadForRead(slashed)
		if err != nil {
			return err
		}
		remaining = value.Clone()
		if from == nil || value.IsZero() {
			return nil
		}

		actual := types.MinBalance(value, from.Reserved)
		newFree, err := types.CheckedAdd(to.Free, actual)
		if err != nil {
			return fmt.Errorf("repatriate to %s: %w", beneficiary, err)
		}
		from.Reserved.Sub(from.Reserved, actual)
		to.Free = newFree
		remaining = new(uint256.Int).Sub(value, actual)
		if actual.IsZero() {
			return nil
		}

		s.emit(events.NewBalanceEvent(events.EventRepatriated, slashed, s.now, actual).
			WithCounterparty(beneficiary).
			WithRemaining(remainingOrNil(remaining)))
		if err := s.settle(from); err != nil {
			return err
		}
		return s.settle(to)
	})
	if err != nil {
		return nil, err
	}
	return remainingOrNil(remaining), nil
}

// Transfer moves value from the free balance of from to the free balance of to, creating the
// destination if needed. Creating an account with less than the existential deposit fails.
func (l *Ledger) Transfer(from, to types.AccountID, value *uint256.Int, liveness types.ExistenceRequirement) error {
	return l.update("transfer", func(s *session) error {
		if value.IsZero() {
			return nil
		}
		src, err := s.loadForRead(from)
		if err != nil {
			return err
		}
		if src == nil {
			return l.rejectWithdrawal(from, monitoring.WithdrawInsufficientBalance, ErrInsufficientBalance)
		}
		if reason, err := l.checkWithdraw(src, value, types.Transfer, liveness, s.now); err != nil {
			return l.rejectWithdrawal(from, reason, err)
		}
		if from == to {
			return nil
		}

		dst, err := s.loadOrCreate(to)
		if err != nil {
			return err
		}
		created := !s.existed[to]
		if created && value.Lt(l.existentialDeposit) {
			return fmt.Errorf("transfer to new account %s: %w", to, ErrBelowExistentialDeposit)
		}
		newFree, err := types.CheckedAdd(dst.Free, value)
		if err != nil {
			return fmt.Errorf("transfer to %s: %w", to, err)
		}

		src.Free.Sub(src.Free, value)
		dst.Free = newFree
		s.emit(events.NewBalanceEvent(events.EventTransferred, from, s.now, value).WithCounterparty(to))
		if created {
			s.emit(events.NewBalanceEvent(events.EventEndowed, to, s.now, value))
		}
		if err := s.settle(src); err != nil {
			return err
		}
		return s.settle(dst)
	})
}

// SetBalance overwrites both balance components of who. The difference in total balance is
// minted or burned and reported through the matching hook.
func (l *Ledger) SetBalance(who types.AccountID, free, reserved *uint256.Int) error {
	return l.update("set_balance", func(s *session) error {
		acc, err := s.loadOrCreate(who)
		if err != nil {
			return err
		}
		oldTotal, err := acc.Total()
		if err != nil {
			return err
		}
		newTotal, err := types.CheckedAdd(free, reserved)
		if err != nil {
			return fmt.Errorf("set balance of %s: %w", who, err)
		}

		switch {
		case newTotal.Gt(oldTotal):
			delta := new(uint256.Int).Sub(newTotal, oldTotal)
			if err := s.mint(delta); err != nil {
				return err
			}
			s.onIncrease(delta)
		case newTotal.Lt(oldTotal):
			delta := new(uint256.Int).Sub(oldTotal, newTotal)
			if err := s.burn(delta); err != nil {
				return err
			}
			s.onDecrease(delta)
		}

		acc.Free = free.Clone()
		acc.Reserved = reserved.Clone()
		s.emit(events.NewBalanceEvent(events.EventBalanceSet, who, s.now, newTotal))
		return s.settle(acc)
	})
}
