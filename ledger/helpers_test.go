package ledger

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/hooks"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
	"github.com/stretchr/testify/require"
)

func init() {
	logx.SetOutput(io.Discard)
}

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

// recorder implements every hook and keeps the calls in order.
type recorder struct {
	mu    sync.Mutex
	calls []string

	decreaseErr error
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *recorder) OnFreeBalanceZero(who types.AccountID) { r.add("zero:%s", who) }

func (r *recorder) OnDilution(minted, portion *uint256.Int) {
	r.add("dilution:%s/%s", minted.Dec(), portion.Dec())
}

func (r *recorder) OnUnbalancedIncrease(amount *uint256.Int) error {
	r.add("increase:%s", amount.Dec())
	return nil
}

func (r *recorder) OnUnbalancedDecrease(amount *uint256.Int) error {
	r.add("decrease:%s", amount.Dec())
	return r.decreaseErr
}

func (r *recorder) Set() hooks.Set {
	return hooks.Set{FreeBalanceZero: r, Dilution: r, Increase: r, Decrease: r}
}

type testEnv struct {
	ledger *Ledger
	stores *store.Stores
	clock  *ManualClock
	hooks  *recorder
}

func newTestEnvWithProvider(t *testing.T, provider db.DatabaseProvider, ed uint64) *testEnv {
	t.Helper()
	stores, err := store.NewStoreFactory().CreateStoresWithProvider(provider)
	require.NoError(t, err)

	rec := &recorder{}
	clock := NewManualClock(0)
	l := NewLedgerFromStores(stores, Options{
		ExistentialDeposit: u(ed),
		Clock:              clock,
		Hooks:              rec.Set(),
	})
	return &testEnv{ledger: l, stores: stores, clock: clock, hooks: rec}
}

func newTestEnv(t *testing.T, ed uint64) *testEnv {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return newTestEnvWithProvider(t, provider, ed)
}

// fund creates who with the given balances through the privileged setter and clears the
// recorded hooks.
func (e *testEnv) fund(t *testing.T, who types.AccountID, free, reserved uint64) {
	t.Helper()
	require.NoError(t, e.ledger.SetBalance(who, u(free), u(reserved)))
	e.hooks.Reset()
}

func (e *testEnv) balances(t *testing.T, who types.AccountID) (free, reserved uint64) {
	t.Helper()
	f, err := e.ledger.FreeBalance(who)
	require.NoError(t, err)
	r, err := e.ledger.ReservedBalance(who)
	require.NoError(t, err)
	return f.Uint64(), r.Uint64()
}

func (e *testEnv) issuance(t *testing.T) uint64 {
	t.Helper()
	v, err := e.ledger.TotalIssuance()
	require.NoError(t, err)
	return v.Uint64()
}

// requireConserved checks that the total issuance equals the sum of all total balances and
// that no stored component is dust.
func (e *testEnv) requireConserved(t *testing.T) {
	t.Helper()
	accounts, err := e.ledger.GetAllAccounts()
	require.NoError(t, err)
	sum := types.ZeroBalance()
	ed := e.ledger.MinimumBalance()
	for _, acc := range accounts {
		total, err := acc.Total()
		require.NoError(t, err)
		sum.Add(sum, total)
		require.False(t, acc.IsDead(), "dead record %s stored", acc.Address)
		require.False(t, !acc.Free.IsZero() && acc.Free.Lt(ed), "free dust on %s", acc.Address)
		require.False(t, !acc.Reserved.IsZero() && acc.Reserved.Lt(ed), "reserved dust on %s", acc.Address)
	}
	issuance, err := e.ledger.TotalIssuance()
	require.NoError(t, err)
	require.Equal(t, issuance.Dec(), sum.Dec())
}
