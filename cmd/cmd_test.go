package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mezonai/currency/common"
	"github.com/mezonai/currency/jsonx"
	"github.com/mezonai/currency/ledger"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	dir     string
	ini     string
	genesis string
	alice   string
	bob     string
	carol   string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	f := &cliFixture{
		dir:   dir,
		alice: common.EncodeBytesToBase58(bytes.Repeat([]byte{1}, common.AddressLength)),
		bob:   common.EncodeBytesToBase58(bytes.Repeat([]byte{2}, common.AddressLength)),
		carol: common.EncodeBytesToBase58(bytes.Repeat([]byte{3}, common.AddressLength)),
	}

	f.ini = filepath.Join(dir, "ledger.ini")
	require.NoError(t, os.WriteFile(f.ini, []byte(fmt.Sprintf(`[storage]
backend = leveldb
directory = %s

[log]
file = %s
`, filepath.Join(dir, "data"), filepath.Join(dir, "ledger.log"))), 0o600))

	f.genesis = filepath.Join(dir, "genesis.yml")
	require.NoError(t, os.WriteFile(f.genesis, []byte(fmt.Sprintf(`config:
  existential_deposit: "10"
  endowed_accounts:
    - address: %s
      amount: "1_000"
    - address: %s
      amount: "400"
      reserved: "100"
`, f.alice, f.bob)), 0o600))
	return f
}

// resetFlags restores every flag to its default, cobra keeps parsed values between runs.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (f *cliFixture) run(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", f.ini, "--genesis", f.genesis))
	err := rootCmd.Execute()
	return out.String(), err
}

// inspect opens the store directly once no command holds it.
func (f *cliFixture) inspect(t *testing.T, fn func(l *ledger.Ledger)) {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.LevelDBStoreType, Directory: filepath.Join(f.dir, "data")})
	require.NoError(t, err)
	defer stores.Close()
	fn(ledger.NewLedgerFromStores(stores, ledger.Options{ExistentialDeposit: types.BalanceFromUint64(10)}))
}

func TestLedgerCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run("init")
	require.NoError(t, err)
	assert.Contains(t, out, "accounts: 2")
	assert.Contains(t, out, "total issuance: 1500")

	out, err = f.run("transfer", "-f", f.alice, "-t", f.carol, "-a", "300")
	require.NoError(t, err)
	assert.Contains(t, out, "transferred 300")

	out, err = f.run("balance", f.carol)
	require.NoError(t, err)
	assert.Contains(t, out, "free: 300")

	_, err = f.run("lock", "set", f.alice, "staking", "600", "--until", "10", "--reasons", "transfer")
	require.NoError(t, err)

	_, err = f.run("transfer", "-f", f.alice, "-t", f.carol, "-a", "200")
	require.ErrorIs(t, err, ledger.ErrLiquidityRestrictions)

	out, err = f.run("advance", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "block: 10")

	_, err = f.run("transfer", "-f", f.alice, "-t", f.carol, "-a", "200")
	require.NoError(t, err)

	out, err = f.run("lock", "prune", f.alice)
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 1 locks")

	out, err = f.run("slash", "--reserved", f.bob, "150")
	require.NoError(t, err)
	assert.Contains(t, out, "slashed 100, remaining 50")

	out, err = f.run("issuance")
	require.NoError(t, err)
	assert.Contains(t, out, "total issuance: 1400")
	assert.Contains(t, out, "existential deposit: 10")

	f.inspect(t, func(l *ledger.Ledger) {
		free, err := l.FreeBalance(types.AccountID(f.alice))
		require.NoError(t, err)
		assert.Equal(t, uint64(500), free.Uint64())
		reserved, err := l.ReservedBalance(types.AccountID(f.bob))
		require.NoError(t, err)
		assert.True(t, reserved.IsZero())
	})
}

func TestTransferChargesFeePerByte(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("init")
	require.NoError(t, err)

	_, err = f.run("transfer", "-f", f.alice, "-t", f.bob, "-a", "100", "--fee-per-byte", "1")
	require.NoError(t, err)

	call, err := jsonx.Marshal(transferCall{From: f.alice, To: f.bob, Amount: "100", Liveness: types.KeepAlive.String()})
	require.NoError(t, err)
	fee := uint64(len(call))

	f.inspect(t, func(l *ledger.Ledger) {
		free, err := l.FreeBalance(types.AccountID(f.alice))
		require.NoError(t, err)
		assert.Equal(t, 1_000-100-fee, free.Uint64())
		issuance, err := l.TotalIssuance()
		require.NoError(t, err)
		assert.Equal(t, 1_500-fee, issuance.Uint64())
	})
}

func TestFailedTransferChargesNoFee(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("init")
	require.NoError(t, err)

	// carol does not exist and 5 is below the deposit of 10
	_, err = f.run("transfer", "-f", f.alice, "-t", f.carol, "-a", "5", "--fee-per-byte", "1")
	require.ErrorIs(t, err, ledger.ErrBelowExistentialDeposit)

	f.inspect(t, func(l *ledger.Ledger) {
		free, err := l.FreeBalance(types.AccountID(f.alice))
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000), free.Uint64())
		issuance, err := l.TotalIssuance()
		require.NoError(t, err)
		assert.Equal(t, uint64(1_500), issuance.Uint64())
	})
}

func TestCommandsRejectBadInput(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run("balance", "not-an-address")
	assert.Error(t, err)

	_, err = f.run("transfer", "-f", f.alice, "-t", f.bob, "-a", "lots")
	assert.Error(t, err)

	_, err = f.run("lock", "set", f.alice, "id-longer-than-eight", "1")
	assert.Error(t, err)
}

func TestSnapshotSaveAndRestore(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run("init")
	require.NoError(t, err)
	_, err = f.run("transfer", "-f", f.alice, "-t", f.carol, "-a", "250")
	require.NoError(t, err)

	snapDir := filepath.Join(f.dir, "snapshots")
	out, err := f.run("snapshot", "save", "--dir", snapDir)
	require.NoError(t, err)
	path := filepath.Join(snapDir, "snapshot-latest.json")
	assert.Contains(t, out, path)

	_, err = f.run("snapshot", "restore", path)
	assert.Error(t, err, "the source store is not empty")

	// point the config at a fresh bolt store and restore there
	require.NoError(t, os.WriteFile(f.ini, []byte(fmt.Sprintf(`[storage]
backend = bolt
directory = %s

[log]
file = %s
`, filepath.Join(f.dir, "restored"), filepath.Join(f.dir, "ledger.log"))), 0o600))
	out, err = f.run("snapshot", "restore", path)
	require.NoError(t, err)
	assert.Contains(t, out, "restored 3 accounts")

	out, err = f.run("balance", f.carol)
	require.NoError(t, err)
	assert.Contains(t, out, "free: 250")
}
