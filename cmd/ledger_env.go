package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/common"
	"github.com/mezonai/currency/config"
	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/hooks"
	"github.com/mezonai/currency/ledger"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/monitoring"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
	"github.com/mezonai/currency/utils"
)

// ledgerEnv is a ledger opened on the configured store for the duration of one command.
type ledgerEnv struct {
	cfg    *config.LedgerConfig
	stores *store.Stores
	clock  *ledger.ManualClock
	ed     *uint256.Int
	hooks  hooks.Set
	ledger *ledger.Ledger
}

func openLedger() (*ledgerEnv, error) {
	cfg, err := config.LoadLedgerConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger config: %w", err)
	}
	logx.Init(cfg.Log)
	monitoring.InitMetrics()

	ed, err := resolveExistentialDeposit(cfg)
	if err != nil {
		return nil, err
	}

	stores, err := store.CreateStores(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open stores: %w", err)
	}
	block, err := stores.StateMeta.BlockNumber()
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	if block < types.Moment(cfg.Ledger.InitialBlock) {
		block = types.Moment(cfg.Ledger.InitialBlock)
	}

	clock := ledger.NewManualClock(block)
	hookSet := hooks.Set{
		FreeBalanceZero: hooks.FreeBalanceZeroFunc(func(who types.AccountID) {
			logx.Info("CMD", fmt.Sprintf("Account %s was reaped", utils.ShortenLog(string(who))))
		}),
	}.Merge(hooks.Set{
		FreeBalanceZero: monitoring.Hooks{},
		Dilution:        monitoring.Hooks{},
		Increase:        monitoring.Hooks{},
		Decrease:        monitoring.Hooks{},
	})

	env := &ledgerEnv{cfg: cfg, stores: stores, clock: clock, ed: ed, hooks: hookSet}
	env.ledger = ledger.NewLedgerFromStores(stores, env.options(hooks.Set{}))
	return env, nil
}

func (e *ledgerEnv) options(extra hooks.Set) ledger.Options {
	return ledger.Options{
		ExistentialDeposit: e.ed,
		Clock:              e.clock,
		Hooks:              e.hooks.Merge(extra),
	}
}

// stage opens a ledger on an overlay of the configured store. Nothing it writes reaches the
// store until the overlay is committed.
func (e *ledgerEnv) stage(extra hooks.Set) (*ledger.Ledger, *db.OverlayProvider, error) {
	overlay := db.NewOverlayProvider(e.stores.Provider)
	stores, err := store.NewStoreFactory().CreateStoresWithProvider(overlay)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewLedgerFromStores(stores, e.options(extra)), overlay, nil
}

// resolveExistentialDeposit prefers the ini override, then the genesis file.
func resolveExistentialDeposit(cfg *config.LedgerConfig) (*uint256.Int, error) {
	ed, err := cfg.ExistentialDepositOverride()
	if err != nil || ed != nil {
		return ed, err
	}
	g, err := config.LoadGenesisConfig(genesisPath)
	if errors.Is(err, fs.ErrNotExist) {
		logx.Warn("CMD", "No genesis file and no existential_deposit override, using zero")
		return types.ZeroBalance(), nil
	}
	if err != nil {
		return nil, err
	}
	return g.ExistentialDepositValue()
}

func (e *ledgerEnv) Close() {
	if err := e.stores.Close(); err != nil {
		logx.Error("CMD", "Failed to close stores:", err)
	}
}

func parseAddress(s string) (types.AccountID, error) {
	if !common.IsValidAddress(s) {
		return "", fmt.Errorf("invalid address %q", s)
	}
	return types.AccountID(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	return types.ParseBalance(s)
}

func liveness(allowDeath bool) types.ExistenceRequirement {
	if allowDeath {
		return types.AllowDead
	}
	return types.KeepAlive
}
