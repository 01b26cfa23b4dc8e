package config

import (
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/store"
)

// Endowment is an account funded at genesis. Amounts are decimal strings so balances beyond
// 64 bits can be written in yaml.
type Endowment struct {
	Address  string `yaml:"address"`
	Amount   string `yaml:"amount"`
	Reserved string `yaml:"reserved,omitempty"`
}

// InitialLock is a lock placed on an endowed account at genesis.
type InitialLock struct {
	Address string   `yaml:"address"`
	ID      string   `yaml:"id"`
	Amount  string   `yaml:"amount"`
	Until   uint64   `yaml:"until"`
	Reasons []string `yaml:"reasons"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	ExistentialDeposit string        `yaml:"existential_deposit"`
	Endowed            []Endowment   `yaml:"endowed_accounts"`
	Locks              []InitialLock `yaml:"locks"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

type LedgerSection struct {
	// ExistentialDeposit overrides the genesis value when set.
	ExistentialDeposit string `ini:"existential_deposit"`
	InitialBlock       uint64 `ini:"initial_block"`
}

// LedgerConfig is the content of ledger.ini.
type LedgerConfig struct {
	Storage store.StoreConfig
	Log     logx.LogConfig
	Ledger  LedgerSection
}
