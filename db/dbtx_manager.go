package db

import (
	"fmt"

	"github.com/mezonai/currency/logx"
)

// DBTxManager runs a group of writes, possibly spanning several stores, as one batch.
type DBTxManager struct {
	provider DatabaseProvider
}

func NewDBTxManager(provider DatabaseProvider) *DBTxManager {
	return &DBTxManager{provider: provider}
}

// Provider returns the provider batches are taken from.
func (tm *DBTxManager) Provider() DatabaseProvider {
	return tm.provider
}

// WithBatch executes fn within a batch. If fn returns nil the batch is committed, otherwise it
// is discarded and nothing is written.
func (tm *DBTxManager) WithBatch(fn func(batch DatabaseBatch) error) error {
	batch := tm.provider.Batch()
	defer func() {
		if err := batch.Close(); err != nil {
			logx.Error("TX_MANAGER", "Failed to close batch:", err)
		}
	}()

	if err := fn(batch); err != nil {
		batch.Reset()
		return fmt.Errorf("batch aborted: %w", err)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}
