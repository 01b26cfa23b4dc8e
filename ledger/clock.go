package ledger

import (
	"sync/atomic"

	"github.com/mezonai/currency/types"
)

// Clock tells the ledger the current moment; lock expiry is evaluated against it.
type Clock interface {
	Now() types.Moment
}

// ManualClock is a Clock advanced explicitly by the block driver (or by tests).
type ManualClock struct {
	now atomic.Uint64
}

func NewManualClock(start types.Moment) *ManualClock {
	c := &ManualClock{}
	c.now.Store(uint64(start))
	return c
}

func (c *ManualClock) Now() types.Moment {
	return types.Moment(c.now.Load())
}

func (c *ManualClock) Set(m types.Moment) {
	c.now.Store(uint64(m))
}

// Advance moves the clock forward by n and returns the new moment.
func (c *ManualClock) Advance(n types.Moment) types.Moment {
	return types.Moment(c.now.Add(uint64(n)))
}
