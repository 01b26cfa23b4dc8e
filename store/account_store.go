package store

import (
	"fmt"
	"sync"

	"github.com/mezonai/currency/db"
	"github.com/mezonai/currency/logx"
	"github.com/mezonai/currency/types"
)

type AccountStore interface {
	Store(account *types.AccountData) error
	StoreBatch(accounts []*types.AccountData) error
	// StageStore and StageRemove queue writes into a batch owned by the caller
	StageStore(batch db.DatabaseBatch, account *types.AccountData) error
	StageRemove(batch db.DatabaseBatch, addr types.AccountID)
	Remove(addr types.AccountID) error
	GetByAddr(addr types.AccountID) (*types.AccountData, error)
	ExistsByAddr(addr types.AccountID) (bool, error)
	GetAll() ([]*types.AccountData, error)
	MustClose()
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.AccountData) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	if err := as.dbProvider.Put(as.getDbKey(account.Address), data); err != nil {
		return fmt.Errorf("failed to write account to db: %w", err)
	}
	return nil
}

func (as *GenericAccountStore) StoreBatch(accounts []*types.AccountData) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	batch := as.dbProvider.Batch()
	defer batch.Close()
	for _, account := range accounts {
		if err := as.StageStore(batch, account); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to write batch of accounts to database: %w", err)
	}
	return nil
}

func (as *GenericAccountStore) StageStore(batch db.DatabaseBatch, account *types.AccountData) error {
	data, err := encodeAccount(account)
	if err != nil {
		return err
	}
	batch.Put(as.getDbKey(account.Address), data)
	return nil
}

func (as *GenericAccountStore) StageRemove(batch db.DatabaseBatch, addr types.AccountID) {
	batch.Delete(as.getDbKey(addr))
}

func (as *GenericAccountStore) Remove(addr types.AccountID) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if err := as.dbProvider.Delete(as.getDbKey(addr)); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", addr, err)
	}
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr types.AccountID) (*types.AccountData, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, fmt.Errorf("could not get account %s from db: %w", addr, err)
	}
	if data == nil {
		return nil, nil
	}

	acc, err := decodeAccount(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode account %s: %w", addr, err)
	}
	return acc, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr types.AccountID) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

// GetAll loads every account record. The provider must support prefix iteration.
func (as *GenericAccountStore) GetAll() ([]*types.AccountData, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	iterable, ok := as.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("provider %T does not support iteration", as.dbProvider)
	}

	var (
		accounts  []*types.AccountData
		decodeErr error
	)
	err := iterable.IteratePrefix([]byte(PrefixAccount), func(key, value []byte) bool {
		acc, err := decodeAccount(value)
		if err != nil {
			decodeErr = fmt.Errorf("could not decode %s: %w", key, err)
			return false
		}
		accounts = append(accounts, acc)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return accounts, nil
}

func (as *GenericAccountStore) MustClose() {
	if err := as.dbProvider.Close(); err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr types.AccountID) []byte {
	return []byte(PrefixAccount + string(addr))
}
