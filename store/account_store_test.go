package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := CreateStores(&StoreConfig{Type: MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

func sampleAccount() *types.AccountData {
	acc := types.NewAccountData("alice")
	acc.Free.SetUint64(1_000)
	acc.Reserved.SetUint64(250)
	acc.Locks = []types.Lock{
		{ID: types.NewLockIdentifier("staking"), Amount: uint256.NewInt(400), Until: 90, Reasons: types.NewWithdrawReasons(types.Transfer, types.Reserve)},
		{ID: types.LockIdentifier{0xde, 0xad, 0xbe, 0xef}, Amount: uint256.NewInt(5), Until: 7, Reasons: types.Fee},
	}
	return acc
}

func TestAccountStoreRoundTrip(t *testing.T) {
	stores := newTestStores(t)

	missing, err := stores.Accounts.GetByAddr("alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	acc := sampleAccount()
	require.NoError(t, stores.Accounts.Store(acc))

	got, err := stores.Accounts.GetByAddr("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, acc, got)

	exists, err := stores.Accounts.ExistsByAddr("alice")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, stores.Accounts.Remove("alice"))
	exists, err = stores.Accounts.ExistsByAddr("alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountStoreLargeBalances(t *testing.T) {
	stores := newTestStores(t)

	acc := types.NewAccountData("whale")
	acc.Free = new(uint256.Int).SetAllOne()
	require.NoError(t, stores.Accounts.Store(acc))

	got, err := stores.Accounts.GetByAddr("whale")
	require.NoError(t, err)
	assert.True(t, got.Free.Eq(acc.Free))
}

func TestAccountStoreBatchAndGetAll(t *testing.T) {
	stores := newTestStores(t)

	a := types.NewAccountData("a")
	a.Free.SetUint64(1)
	b := types.NewAccountData("b")
	b.Reserved.SetUint64(2)
	require.NoError(t, stores.Accounts.StoreBatch([]*types.AccountData{b, a}))
	require.NoError(t, stores.StateMeta.SetTotalIssuance(uint256.NewInt(3)))

	all, err := stores.Accounts.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, types.AccountID("a"), all[0].Address)
	assert.Equal(t, types.AccountID("b"), all[1].Address)
}

func TestStagedWritesCommitTogether(t *testing.T) {
	stores := newTestStores(t)
	require.NoError(t, stores.Accounts.Store(types.NewAccountData("gone")))

	tm := db.NewDBTxManager(stores.Provider)
	err := tm.WithBatch(func(batch db.DatabaseBatch) error {
		if err := stores.Accounts.StageStore(batch, sampleAccount()); err != nil {
			return err
		}
		stores.Accounts.StageRemove(batch, "gone")
		stores.StateMeta.StageTotalIssuance(batch, uint256.NewInt(1_250))
		return nil
	})
	require.NoError(t, err)

	exists, err := stores.Accounts.ExistsByAddr("gone")
	require.NoError(t, err)
	assert.False(t, exists)
	issuance, err := stores.StateMeta.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_250), issuance.Uint64())
}

func TestStateMetaDefaults(t *testing.T) {
	stores := newTestStores(t)

	issuance, err := stores.StateMeta.TotalIssuance()
	require.NoError(t, err)
	assert.True(t, issuance.IsZero())

	n, err := stores.StateMeta.BlockNumber()
	require.NoError(t, err)
	assert.Equal(t, types.Moment(0), n)

	require.NoError(t, stores.StateMeta.SetBlockNumber(42))
	n, err = stores.StateMeta.BlockNumber()
	require.NoError(t, err)
	assert.Equal(t, types.Moment(42), n)
}

func TestStoreConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StoreConfig
		wantErr bool
	}{
		{name: "leveldb", cfg: StoreConfig{Type: LevelDBStoreType, Directory: "./data"}},
		{name: "leveldb without dir", cfg: StoreConfig{Type: LevelDBStoreType}, wantErr: true},
		{name: "redis", cfg: StoreConfig{Type: RedisStoreType, RedisAddr: "localhost:6379"}},
		{name: "redis without addr", cfg: StoreConfig{Type: RedisStoreType}, wantErr: true},
		{name: "bolt", cfg: StoreConfig{Type: BoltStoreType, Directory: "./data"}},
		{name: "bolt without dir", cfg: StoreConfig{Type: BoltStoreType}, wantErr: true},
		{name: "postgres", cfg: StoreConfig{Type: PostgresStoreType, PostgresURL: "postgres://localhost/ledger"}},
		{name: "postgres without url", cfg: StoreConfig{Type: PostgresStoreType}, wantErr: true},
		{name: "memory", cfg: StoreConfig{Type: MemoryStoreType}},
		{name: "empty", cfg: StoreConfig{}, wantErr: true},
		{name: "unknown", cfg: StoreConfig{Type: "sqlite", Directory: "x"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoltStoresSurviveReopen(t *testing.T) {
	cfg := &StoreConfig{Type: BoltStoreType, Directory: t.TempDir()}

	stores, err := CreateStores(cfg)
	require.NoError(t, err)
	require.NoError(t, stores.Accounts.Store(sampleAccount()))
	require.NoError(t, stores.StateMeta.SetTotalIssuance(uint256.NewInt(1_250)))
	require.NoError(t, stores.Close())

	stores, err = CreateStores(cfg)
	require.NoError(t, err)
	defer stores.Close()

	got, err := stores.Accounts.GetByAddr("alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1_000), got.Free.Uint64())
	assert.Len(t, got.Locks, 2)

	issuance, err := stores.StateMeta.TotalIssuance()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_250), issuance.Uint64())
}
