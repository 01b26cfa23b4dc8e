package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezonai/currency/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	LevelDBStoreType StoreType = "leveldb"
	RocksDBStoreType StoreType = "rocksdb"
	RedisStoreType   StoreType = "redis"
	// BoltStoreType keeps the ledger in a single bbolt file inside Directory
	BoltStoreType     StoreType = "bolt"
	PostgresStoreType StoreType = "postgres"
	// MemoryStoreType keeps everything in an in-memory LevelDB, nothing survives the process
	MemoryStoreType StoreType = "memory"
)

const boltFileName = "ledger.bolt"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	Type      StoreType `ini:"backend" yaml:"backend"`
	Directory string    `ini:"directory" yaml:"directory"`
	RedisAddr string    `ini:"redis_addr" yaml:"redis_addr"`
	RedisDB   int       `ini:"redis_db" yaml:"redis_db"`
	// PostgresURL is a lib/pq connection string
	PostgresURL string `ini:"postgres_url" yaml:"postgres_url"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case LevelDBStoreType, RocksDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis_addr cannot be empty for redis store")
		}
	case PostgresStoreType:
		if sc.PostgresURL == "" {
			return fmt.Errorf("postgres_url cannot be empty for postgres store")
		}
	case MemoryStoreType:
	case "":
		return fmt.Errorf("store type cannot be empty")
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
	return nil
}

// Stores groups the stores the ledger runs on, all sharing one provider.
type Stores struct {
	Provider  db.DatabaseProvider
	Accounts  *GenericAccountStore
	StateMeta *GenericStateMetaStore
}

func (s *Stores) Close() error {
	return s.Provider.Close()
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoresWithProvider builds the ledger stores on top of an existing provider.
func (sf *StoreFactory) CreateStoresWithProvider(provider db.DatabaseProvider) (*Stores, error) {
	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}
	return &Stores{
		Provider:  provider,
		Accounts:  accStore,
		StateMeta: NewGenericStateMetaStore(provider),
	}, nil
}

// CreateStores opens the configured provider and builds the ledger stores on it.
func (sf *StoreFactory) CreateStores(config *StoreConfig) (*Stores, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return sf.CreateStoresWithProvider(provider)
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case RocksDBStoreType:
		return db.NewRocksDBProvider(config.Directory)
	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddr, config.RedisDB)
	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create bolt directory: %w", err)
		}
		return db.NewBoltProvider(filepath.Join(config.Directory, boltFileName))
	case PostgresStoreType:
		return db.NewPostgresProvider(config.PostgresURL)
	case MemoryStoreType:
		return db.NewMemLevelDBProvider()
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

var globalFactory = NewStoreFactory()

// CreateStores creates the ledger stores using the global factory
func CreateStores(config *StoreConfig) (*Stores, error) {
	return globalFactory.CreateStores(config)
}
