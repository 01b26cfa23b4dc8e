package events

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventEndowed     EventType = "Endowed"
	EventReaped      EventType = "Reaped"
	EventSlashed     EventType = "Slashed"
	EventRewarded    EventType = "Rewarded"
	EventWithdrawn   EventType = "Withdrawn"
	EventDeposited   EventType = "Deposited"
	EventReserved    EventType = "Reserved"
	EventUnreserved  EventType = "Unreserved"
	EventRepatriated EventType = "Repatriated"
	EventTransferred EventType = "Transferred"
	EventDustLost    EventType = "DustLost"
	EventBalanceSet  EventType = "BalanceSet"
	EventLockSet     EventType = "LockSet"
	EventLockRemoved EventType = "LockRemoved"
)

// LedgerEvent represents anything that happened to an account
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	Account() types.AccountID
	Block() types.Moment
}

// BalanceEvent reports a balance movement. Counterparty is set for transfers and
// repatriations, Remaining for best-effort operations that could not be fully satisfied.
type BalanceEvent struct {
	kind         EventType
	account      types.AccountID
	block        types.Moment
	timestamp    time.Time
	Counterparty types.AccountID
	Amount       *uint256.Int
	Remaining    *uint256.Int
}

func NewBalanceEvent(kind EventType, account types.AccountID, block types.Moment, amount *uint256.Int) *BalanceEvent {
	return &BalanceEvent{
		kind:      kind,
		account:   account,
		block:     block,
		timestamp: time.Now(),
		Amount:    amount.Clone(),
	}
}

func (e *BalanceEvent) WithCounterparty(who types.AccountID) *BalanceEvent {
	e.Counterparty = who
	return e
}

func (e *BalanceEvent) WithRemaining(remaining *uint256.Int) *BalanceEvent {
	if remaining != nil {
		e.Remaining = remaining.Clone()
	}
	return e
}

func (e *BalanceEvent) Type() EventType          { return e.kind }
func (e *BalanceEvent) Timestamp() time.Time     { return e.timestamp }
func (e *BalanceEvent) Account() types.AccountID { return e.account }
func (e *BalanceEvent) Block() types.Moment      { return e.block }

// LockEvent reports a lock being set, extended or removed. Lock is the zero value on removal.
type LockEvent struct {
	kind      EventType
	account   types.AccountID
	block     types.Moment
	timestamp time.Time
	LockID    types.LockIdentifier
	Lock      types.Lock
}

func NewLockSet(account types.AccountID, block types.Moment, lock types.Lock) *LockEvent {
	return &LockEvent{
		kind:      EventLockSet,
		account:   account,
		block:     block,
		timestamp: time.Now(),
		LockID:    lock.ID,
		Lock:      lock.Clone(),
	}
}

func NewLockRemoved(account types.AccountID, block types.Moment, id types.LockIdentifier) *LockEvent {
	return &LockEvent{
		kind:      EventLockRemoved,
		account:   account,
		block:     block,
		timestamp: time.Now(),
		LockID:    id,
	}
}

func (e *LockEvent) Type() EventType          { return e.kind }
func (e *LockEvent) Timestamp() time.Time     { return e.timestamp }
func (e *LockEvent) Account() types.AccountID { return e.account }
func (e *LockEvent) Block() types.Moment      { return e.block }
