package types

import (
	"github.com/holiman/uint256"
)

// AccountID identifies an account. The ledger never inspects its structure.
type AccountID string

// Moment is the ledger's notion of time, a block number.
type Moment uint64

// AccountData is the balance record of one account.
type AccountData struct {
	Address  AccountID    `json:"address"`
	Free     *uint256.Int `json:"free"`
	Reserved *uint256.Int `json:"reserved"`
	Locks    []Lock       `json:"locks,omitempty"`
}

func NewAccountData(addr AccountID) *AccountData {
	return &AccountData{
		Address:  addr,
		Free:     ZeroBalance(),
		Reserved: ZeroBalance(),
	}
}

// Total returns free + reserved.
func (a *AccountData) Total() (*uint256.Int, error) {
	return CheckedAdd(a.Free, a.Reserved)
}

// IsDead reports whether both balance components are zero, i.e. the record should not exist.
func (a *AccountData) IsDead() bool {
	return a.Free.IsZero() && a.Reserved.IsZero()
}

// Clone returns a deep copy so staged mutations never alias stored values.
func (a *AccountData) Clone() *AccountData {
	cp := &AccountData{
		Address:  a.Address,
		Free:     cloneOrZero(a.Free),
		Reserved: cloneOrZero(a.Reserved),
	}
	if len(a.Locks) > 0 {
		cp.Locks = make([]Lock, len(a.Locks))
		for i, l := range a.Locks {
			cp.Locks[i] = l.Clone()
		}
	}
	return cp
}

func cloneOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return ZeroBalance()
	}
	return v.Clone()
}

// ExistenceRequirement decides whether a withdrawal may take the free balance below the
// existential deposit.
type ExistenceRequirement int

const (
	KeepAlive ExistenceRequirement = iota
	AllowDead
)

func (e ExistenceRequirement) String() string {
	if e == KeepAlive {
		return "keep_alive"
	}
	return "allow_dead"
}

// UpdateBalanceOutcome is the result of crediting a possibly new account.
type UpdateBalanceOutcome int

const (
	// Updated means the balance was simply updated.
	Updated UpdateBalanceOutcome = iota
	// AccountKilled means the credit was too small to keep the account alive and was discarded.
	AccountKilled
)

func (o UpdateBalanceOutcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "account_killed"
}
