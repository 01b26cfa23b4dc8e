// Package locks implements the liquidity-restriction algebra over an account's lock list.
// All functions are pure: they return a new slice and never mutate their input.
package locks

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
)

// Find returns the lock with the given id.
func Find(locks []types.Lock, id types.LockIdentifier) (types.Lock, bool) {
	for _, l := range locks {
		if l.ID == id {
			return l.Clone(), true
		}
	}
	return types.Lock{}, false
}

// Set inserts lock or replaces the lock with the same id in place. Insertion order is kept so
// the persisted record is stable.
func Set(locks []types.Lock, lock types.Lock) []types.Lock {
	out := make([]types.Lock, 0, len(locks)+1)
	replaced := false
	for _, l := range locks {
		if l.ID == lock.ID {
			out = append(out, lock.Clone())
			replaced = true
			continue
		}
		out = append(out, l.Clone())
	}
	if !replaced {
		out = append(out, lock.Clone())
	}
	return out
}

// Extend replaces the lock with the same id by one that is at least as restrictive as both the
// old and the new lock: larger amount, later until, union of reasons.
func Extend(locks []types.Lock, lock types.Lock) []types.Lock {
	if prev, ok := Find(locks, lock.ID); ok {
		lock = Merge(prev, lock)
	}
	return Set(locks, lock)
}

// Merge returns the least restrictive lock that is at least as restrictive as a and b.
func Merge(a, b types.Lock) types.Lock {
	merged := types.Lock{
		ID:      b.ID,
		Amount:  types.MaxBalance(a.Amount, b.Amount),
		Until:   a.Until,
		Reasons: a.Reasons.Union(b.Reasons),
	}
	if b.Until > merged.Until {
		merged.Until = b.Until
	}
	return merged
}

// Remove drops the lock with the given id. Removing an absent id returns the list unchanged.
func Remove(locks []types.Lock, id types.LockIdentifier) []types.Lock {
	out := make([]types.Lock, 0, len(locks))
	for _, l := range locks {
		if l.ID != id {
			out = append(out, l.Clone())
		}
	}
	return out
}

// LockedAmount is the largest amount of any lock active at now whose reasons intersect reasons.
// Locks do not stack.
func LockedAmount(locks []types.Lock, reasons types.WithdrawReasons, now types.Moment) *uint256.Int {
	locked := types.ZeroBalance()
	for _, l := range locks {
		if !l.ActiveAt(now) || !l.Reasons.Intersects(reasons) {
			continue
		}
		if l.Amount.Gt(locked) {
			locked.Set(l.Amount)
		}
	}
	return locked
}

// Prune drops locks that no longer restrict anything at now.
func Prune(locks []types.Lock, now types.Moment) []types.Lock {
	out := make([]types.Lock, 0, len(locks))
	for _, l := range locks {
		if l.ActiveAt(now) {
			out = append(out, l.Clone())
		}
	}
	return out
}
