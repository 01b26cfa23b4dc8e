package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/mezonai/currency/common"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/store"
	"github.com/mezonai/currency/types"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genesis config: %w", err)
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode genesis config %s: %w", path, err)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis config: %d endowed accounts, %d locks", len(cfgFile.Config.Endowed), len(cfgFile.Config.Locks)))
	return &cfgFile.Config, nil
}

// LoadLedgerConfig reads the [storage], [log] and [ledger] sections of an .ini file.
// Missing sections keep their defaults: an in-memory store and env-driven logging.
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load ledger config: %w", err)
	}
	ledgerCfg := &LedgerConfig{
		Storage: store.StoreConfig{Type: store.MemoryStoreType},
	}
	if err := cfg.Section("storage").MapTo(&ledgerCfg.Storage); err != nil {
		return nil, fmt.Errorf("storage section: %w", err)
	}
	if err := cfg.Section("log").MapTo(&ledgerCfg.Log); err != nil {
		return nil, fmt.Errorf("log section: %w", err)
	}
	if err := cfg.Section("ledger").MapTo(&ledgerCfg.Ledger); err != nil {
		return nil, fmt.Errorf("ledger section: %w", err)
	}
	return ledgerCfg, nil
}

func (c *LedgerConfig) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Ledger.ExistentialDeposit != "" {
		if _, err := types.ParseBalance(c.Ledger.ExistentialDeposit); err != nil {
			return fmt.Errorf("existential_deposit: %w", err)
		}
	}
	return nil
}

// ExistentialDepositOverride returns the ini override, nil when unset.
func (c *LedgerConfig) ExistentialDepositOverride() (*uint256.Int, error) {
	if c.Ledger.ExistentialDeposit == "" {
		return nil, nil
	}
	return types.ParseBalance(c.Ledger.ExistentialDeposit)
}

// Balances decodes the endowment amounts. An empty reserved amount is zero.
func (e Endowment) Balances() (*uint256.Int, *uint256.Int, error) {
	free, err := types.ParseBalance(e.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("amount: %w", err)
	}
	reserved := types.ZeroBalance()
	if e.Reserved != "" {
		if reserved, err = types.ParseBalance(e.Reserved); err != nil {
			return nil, nil, fmt.Errorf("reserved: %w", err)
		}
	}
	return free, reserved, nil
}

// Lock decodes the lock definition.
func (l InitialLock) Lock() (types.Lock, error) {
	id, err := types.ParseLockIdentifier(l.ID)
	if err != nil {
		return types.Lock{}, err
	}
	amount, err := types.ParseBalance(l.Amount)
	if err != nil {
		return types.Lock{}, fmt.Errorf("amount: %w", err)
	}
	reasons, err := types.ParseWithdrawReasons(l.Reasons)
	if err != nil {
		return types.Lock{}, err
	}
	return types.Lock{ID: id, Amount: amount, Until: types.Moment(l.Until), Reasons: reasons}, nil
}

// ExistentialDepositValue decodes the deposit; empty means zero.
func (g *GenesisConfig) ExistentialDepositValue() (*uint256.Int, error) {
	if g.ExistentialDeposit == "" {
		return types.ZeroBalance(), nil
	}
	return types.ParseBalance(g.ExistentialDeposit)
}

// Validate checks every address, amount and reason and that no endowment would be dust.
// All problems are reported, not just the first.
func (g *GenesisConfig) Validate() error {
	ed, err := g.ExistentialDepositValue()
	if err != nil {
		return fmt.Errorf("existential_deposit: %w", err)
	}

	var errs []error
	endowed := make(map[string]bool, len(g.Endowed))
	for i, e := range g.Endowed {
		if !common.IsValidAddress(e.Address) {
			errs = append(errs, fmt.Errorf("endowed_accounts[%d]: invalid address %q", i, e.Address))
			continue
		}
		if endowed[e.Address] {
			errs = append(errs, fmt.Errorf("endowed_accounts[%d]: duplicate address %s", i, e.Address))
			continue
		}
		endowed[e.Address] = true

		free, reserved, err := e.Balances()
		if err != nil {
			errs = append(errs, fmt.Errorf("endowed_accounts[%d]: %w", i, err))
			continue
		}
		if free.Lt(ed) && !free.IsZero() || reserved.Lt(ed) && !reserved.IsZero() {
			errs = append(errs, fmt.Errorf("endowed_accounts[%d]: balance below existential deposit %s", i, ed.Dec()))
		}
		if free.IsZero() && reserved.IsZero() {
			errs = append(errs, fmt.Errorf("endowed_accounts[%d]: empty endowment", i))
		}
	}

	for i, l := range g.Locks {
		if !endowed[l.Address] {
			errs = append(errs, fmt.Errorf("locks[%d]: address %q is not endowed", i, l.Address))
		}
		if _, err := l.Lock(); err != nil {
			errs = append(errs, fmt.Errorf("locks[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
