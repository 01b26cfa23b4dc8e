package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/events"
	"github.com/mezonai/currency/hooks"
	"github.com/mezonai/currency/locks"
	"github.com/mezonai/currency/monitoring"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
)

// Ledger owns every balance record. Operations are serialised; each one commits in a single
// storage batch, after which events are published and hooks run with the ledger unlocked.
type Ledger struct {
	mu                 sync.RWMutex
	txManager          *db.DBTxManager
	accountStore       store.AccountStore
	stateMeta          store.StateMetaStore
	existentialDeposit *uint256.Int
	clock              Clock
	hooks              hooks.Set
	eventBus           *events.EventBus
}

type Options struct {
	ExistentialDeposit *uint256.Int
	Clock              Clock
	Hooks              hooks.Set
	EventBus           *events.EventBus
}

// NewLedger builds a ledger over stores that share the provider behind txManager. A nil
// clock is a ManualClock at zero, unset hooks are no-ops and a nil bus disables events.
func NewLedger(txManager *db.DBTxManager, accountStore store.AccountStore, stateMeta store.StateMetaStore, opts Options) *Ledger {
	ed := types.ZeroBalance()
	if opts.ExistentialDeposit != nil {
		ed = opts.ExistentialDeposit.Clone()
	}
	clock := opts.Clock
	if clock == nil {
		clock = NewManualClock(0)
	}
	return &Ledger{
		txManager:          txManager,
		accountStore:       accountStore,
		stateMeta:          stateMeta,
		existentialDeposit: ed,
		clock:              clock,
		hooks:              opts.Hooks.WithDefaults(),
		eventBus:           opts.EventBus,
	}
}

// MakePayment charges who for a call of encodedLen bytes through the configured payment hook.
// The ledger is not locked, so the hook may withdraw from it.
func (l *Ledger) MakePayment(who types.AccountID, encodedLen int) error {
	if err := l.hooks.Payment.MakePayment(who, encodedLen); err != nil {
		return fmt.Errorf("payment by %s: %w", who, err)
	}
	return nil
}

// NewLedgerFromStores wires a ledger to the stores built by store.CreateStores.
func NewLedgerFromStores(stores *store.Stores, opts Options) *Ledger {
	return NewLedger(db.NewDBTxManager(stores.Provider), stores.Accounts, stores.StateMeta, opts)
}

// update runs fn in a fresh session under the write lock and commits it. Events and hooks are
// delivered after the lock is released so hooks may call back into the ledger.
func (l *Ledger) update(op string, fn func(s *session) error) error {
	l.mu.Lock()
	s := newSession(l)
	if err := fn(s); err != nil {
		l.mu.Unlock()
		return err
	}
	if err := s.commit(); err != nil {
		l.mu.Unlock()
		return err
	}
	l.mu.Unlock()

	monitoring.IncreaseOperation(op)
	return s.finish()
}

func (l *Ledger) getAccount(who types.AccountID) (*types.AccountData, error) {
	acc, err := l.accountStore.GetByAddr(who)
	if err != nil {
		return nil, fmt.Errorf("could not load account %s: %w", who, err)
	}
	return acc, nil
}

// GetAccount returns the record of who, nil if it does not exist.
func (l *Ledger) GetAccount(who types.AccountID) (*types.AccountData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.getAccount(who)
}

func (l *Ledger) AccountExists(who types.AccountID) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accountStore.ExistsByAddr(who)
}

// FreeBalance is zero for accounts that do not exist.
func (l *Ledger) FreeBalance(who types.AccountID) (*uint256.Int, error) {
	acc, err := l.GetAccount(who)
	if err != nil || acc == nil {
		return types.ZeroBalance(), err
	}
	return acc.Free, nil
}

func (l *Ledger) ReservedBalance(who types.AccountID) (*uint256.Int, error) {
	acc, err := l.GetAccount(who)
	if err != nil || acc == nil {
		return types.ZeroBalance(), err
	}
	return acc.Reserved, nil
}

// TotalBalance is free plus reserved.
func (l *Ledger) TotalBalance(who types.AccountID) (*uint256.Int, error) {
	acc, err := l.GetAccount(who)
	if err != nil || acc == nil {
		return types.ZeroBalance(), err
	}
	return acc.Total()
}

func (l *Ledger) TotalIssuance() (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stateMeta.TotalIssuance()
}

// MinimumBalance is the existential deposit.
func (l *Ledger) MinimumBalance() *uint256.Int {
	return l.existentialDeposit.Clone()
}

func (l *Ledger) Now() types.Moment {
	return l.clock.Now()
}

// CanSlash reports whether a slash of value would take anything at all: a zero slash always
// can, otherwise the free balance must be nonzero.
func (l *Ledger) CanSlash(who types.AccountID, value *uint256.Int) (bool, error) {
	if value.IsZero() {
		return true, nil
	}
	free, err := l.FreeBalance(who)
	if err != nil {
		return false, err
	}
	return !free.IsZero(), nil
}

// CanReserve reports whether Reserve(who, value) would succeed.
func (l *Ledger) CanReserve(who types.AccountID, value *uint256.Int) (bool, error) {
	acc, err := l.GetAccount(who)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return value.IsZero(), nil
	}
	_, err = l.checkWithdraw(acc, value, types.Reserve, types.AllowDead, l.clock.Now())
	return err == nil, nil
}

// GetAllAccounts lists every record; the storage backend must support iteration.
func (l *Ledger) GetAllAccounts() ([]*types.AccountData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	accounts, err := l.accountStore.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	monitoring.SetAccountCount(len(accounts))
	return accounts, nil
}

// checkWithdraw checks a withdrawal of value from acc.Free against balance, locks and
// liveness without mutating acc. The returned label feeds the rejection metric.
func (l *Ledger) checkWithdraw(acc *types.AccountData, value *uint256.Int, reasons types.WithdrawReasons, liveness types.ExistenceRequirement, now types.Moment) (monitoring.WithdrawRejectedReason, error) {
	if value.Gt(acc.Free) {
		return monitoring.WithdrawInsufficientBalance, ErrInsufficientBalance
	}
	newFree := new(uint256.Int).Sub(acc.Free, value)
	if locks.LockedAmount(acc.Locks, reasons, now).Gt(newFree) {
		return monitoring.WithdrawLiquidityRestricted, ErrLiquidityRestrictions
	}
	if liveness == types.KeepAlive && newFree.Lt(l.existentialDeposit) {
		return monitoring.WithdrawWouldKillAccount, ErrWouldKillAccount
	}
	return "", nil
}
