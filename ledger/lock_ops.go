package ledger

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/currency/events"
	"github.com/mezonai/currency/locks"
	"github.com/mezonai/currency/types"
)

// SetLock creates or overwrites lock id on who. Accounts that do not exist have nothing to
// lock and are left alone.
func (l *Ledger) SetLock(id types.LockIdentifier, who types.AccountID, amount *uint256.Int, until types.Moment, reasons types.WithdrawReasons) error {
	return l.applyLock("set_lock", who, types.Lock{ID: id, Amount: amount, Until: until, Reasons: reasons}, locks.Set)
}

// ExtendLock replaces lock id on who with one at least as restrictive as both the existing
// lock and the requested one.
func (l *Ledger) ExtendLock(id types.LockIdentifier, who types.AccountID, amount *uint256.Int, until types.Moment, reasons types.WithdrawReasons) error {
	return l.applyLock("extend_lock", who, types.Lock{ID: id, Amount: amount, Until: until, Reasons: reasons}, locks.Extend)
}

func (l *Ledger) applyLock(op string, who types.AccountID, lock types.Lock, apply func([]types.Lock, types.Lock) []types.Lock) error {
	return l.update(op, func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil || acc == nil {
			return err
		}
		acc.Locks = apply(acc.Locks, lock)
		applied, _ := locks.Find(acc.Locks, lock.ID)
		s.emit(events.NewLockSet(who, s.now, applied))
		s.put(acc)
		return nil
	})
}

// RemoveLock drops lock id from who. Removing a lock that is not there is not an error.
func (l *Ledger) RemoveLock(id types.LockIdentifier, who types.AccountID) error {
	return l.update("remove_lock", func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil || acc == nil {
			return err
		}
		if _, ok := locks.Find(acc.Locks, id); !ok {
			return nil
		}
		acc.Locks = locks.Remove(acc.Locks, id)
		s.emit(events.NewLockRemoved(who, s.now, id))
		s.put(acc)
		return nil
	})
}

// PruneLocks drops the locks on who that expired at the current block and returns how many
// were removed. Expired locks restrict nothing, so this only tidies the record.
func (l *Ledger) PruneLocks(who types.AccountID) (int, error) {
	removed := 0
	err := l.update("prune_locks", func(s *session) error {
		acc, err := s.loadForRead(who)
		if err != nil || acc == nil {
			return err
		}
		kept := locks.Prune(acc.Locks, s.now)
		removed = len(acc.Locks) - len(kept)
		if removed == 0 {
			return nil
		}
		for _, lock := range acc.Locks {
			if !lock.ActiveAt(s.now) {
				s.emit(events.NewLockRemoved(who, s.now, lock.ID))
			}
		}
		acc.Locks = kept
		s.put(acc)
		return nil
	})
	return removed, err
}

// Locks returns the locks recorded on who, including expired ones.
func (l *Ledger) Locks(who types.AccountID) ([]types.Lock, error) {
	acc, err := l.GetAccount(who)
	if err != nil || acc == nil {
		return nil, err
	}
	return acc.Locks, nil
}

// LockedAmount is the amount of who's free balance that locks active at moment at hold back
// from a withdrawal for reasons.
func (l *Ledger) LockedAmount(who types.AccountID, reasons types.WithdrawReasons, at types.Moment) (*uint256.Int, error) {
	list, err := l.Locks(who)
	if err != nil {
		return nil, err
	}
	return locks.LockedAmount(list, reasons, at), nil
}
