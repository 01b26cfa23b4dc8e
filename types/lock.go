package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// LockIdentifier names a lock so it can be replaced or removed individually.
type LockIdentifier [8]byte

// NewLockIdentifier builds an id from a short tag, zero-padded or truncated to 8 bytes.
func NewLockIdentifier(tag string) LockIdentifier {
	var id LockIdentifier
	copy(id[:], tag)
	return id
}

// ParseLockIdentifier accepts either 16 hex characters or a tag of at most 8 bytes.
func ParseLockIdentifier(s string) (LockIdentifier, error) {
	var id LockIdentifier
	if len(s) == 2*len(id) {
		if raw, err := hex.DecodeString(s); err == nil {
			copy(id[:], raw)
			return id, nil
		}
	}
	if len(s) == 0 || len(s) > len(id) {
		return id, fmt.Errorf("lock id %q: want 1-8 characters or 16 hex digits", s)
	}
	copy(id[:], s)
	return id, nil
}

func (id LockIdentifier) Hex() string {
	return hex.EncodeToString(id[:])
}

// String prints printable tags as text, anything else as hex.
func (id LockIdentifier) String() string {
	tag := bytes.TrimRight(id[:], "\x00")
	for _, c := range tag {
		if c < 0x20 || c > 0x7e {
			return id.Hex()
		}
	}
	return string(tag)
}

// Lock restricts withdrawal of up to Amount for Reasons while the ledger clock is before Until.
type Lock struct {
	ID      LockIdentifier  `json:"id"`
	Amount  *uint256.Int    `json:"amount"`
	Until   Moment          `json:"until"`
	Reasons WithdrawReasons `json:"reasons"`
}

func (l Lock) Clone() Lock {
	l.Amount = cloneOrZero(l.Amount)
	return l
}

// ActiveAt reports whether the lock still restricts funds at moment now.
func (l Lock) ActiveAt(now Moment) bool {
	return now < l.Until
}
