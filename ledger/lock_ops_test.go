package ledger

import (
	"testing"

	"github.com/mezonai/currency/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLockOnMissingAccountIsNoop(t *testing.T) {
	env := newTestEnv(t, 1)

	require.NoError(t, env.ledger.SetLock(staking, "ghost", u(10), 10, types.Transfer))
	exists, err := env.ledger.AccountExists("ghost")
	require.NoError(t, err)
	assert.False(t, exists)

	locked, err := env.ledger.LockedAmount("ghost", types.Transfer, 0)
	require.NoError(t, err)
	assert.True(t, locked.IsZero())
}

func TestSetLockLastWriteWins(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)

	require.NoError(t, env.ledger.SetLock(staking, "alice", u(80), 100, types.Transfer))
	require.NoError(t, env.ledger.SetLock(staking, "alice", u(10), 5, types.Fee))

	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(10), list[0].Amount.Uint64())
	assert.Equal(t, types.Moment(5), list[0].Until)
	assert.Equal(t, types.Fee, list[0].Reasons)

	require.NoError(t, env.ledger.Withdraw("alice", u(90), types.Transfer, types.KeepAlive))
}

func TestExtendLockIsMonotonic(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)

	require.NoError(t, env.ledger.ExtendLock(staking, "alice", u(40), 100, types.Transfer))
	require.NoError(t, env.ledger.ExtendLock(staking, "alice", u(20), 50, types.Fee))

	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(40), list[0].Amount.Uint64())
	assert.Equal(t, types.Moment(100), list[0].Until)
	assert.Equal(t, types.NewWithdrawReasons(types.Transfer, types.Fee), list[0].Reasons)

	locked, err := env.ledger.LockedAmount("alice", types.Fee, 99)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), locked.Uint64())
}

func TestLocksDoNotStack(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)
	vesting := types.NewLockIdentifier("vesting")

	require.NoError(t, env.ledger.SetLock(staking, "alice", u(40), 100, types.Transfer))
	require.NoError(t, env.ledger.SetLock(vesting, "alice", u(50), 100, types.Transfer))

	locked, err := env.ledger.LockedAmount("alice", types.Transfer, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), locked.Uint64())
	require.NoError(t, env.ledger.Transfer("alice", "bob", u(50), types.KeepAlive))
}

func TestRemoveLock(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)
	require.NoError(t, env.ledger.SetLock(staking, "alice", u(100), 100, types.AllWithdrawReasons()))

	err := env.ledger.Withdraw("alice", u(1), types.Fee, types.AllowDead)
	require.ErrorIs(t, err, ErrLiquidityRestrictions)

	require.NoError(t, env.ledger.RemoveLock(staking, "alice"))
	require.NoError(t, env.ledger.RemoveLock(staking, "alice"))
	require.NoError(t, env.ledger.RemoveLock(staking, "ghost"))

	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, env.ledger.Withdraw("alice", u(1), types.Fee, types.AllowDead))
}

func TestLocksAreEvaluatedAgainstClock(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)
	require.NoError(t, env.ledger.SetLock(staking, "alice", u(100), 20, types.Transfer))

	env.clock.Set(19)
	err := env.ledger.Transfer("alice", "bob", u(10), types.KeepAlive)
	require.ErrorIs(t, err, ErrLiquidityRestrictions)

	assert.Equal(t, types.Moment(20), env.clock.Advance(1))
	require.NoError(t, env.ledger.Transfer("alice", "bob", u(10), types.KeepAlive))

	// expired locks stay on record until removed
	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestReapingDropsLocks(t *testing.T) {
	env := newTestEnv(t, 10)
	env.fund(t, "alice", 100, 0)
	require.NoError(t, env.ledger.SetLock(staking, "alice", u(10), 1000, types.Fee))

	_, err := env.ledger.Slash("alice", u(100))
	require.NoError(t, err)
	env.fund(t, "alice", 50, 0)

	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPruneLocksDropsOnlyExpired(t *testing.T) {
	env := newTestEnv(t, 1)
	env.fund(t, "alice", 100, 0)
	vesting := types.NewLockIdentifier("vesting")
	require.NoError(t, env.ledger.SetLock(staking, "alice", u(10), 5, types.Transfer))
	require.NoError(t, env.ledger.SetLock(vesting, "alice", u(20), 50, types.Transfer))

	removed, err := env.ledger.PruneLocks("alice")
	require.NoError(t, err)
	assert.Zero(t, removed)

	env.clock.Set(5)
	removed, err = env.ledger.PruneLocks("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := env.ledger.Locks("alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, vesting, list[0].ID)

	removed, err = env.ledger.PruneLocks("ghost")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
