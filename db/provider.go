package db

// DatabaseProvider abstracts the key-value backend the ledger stores are built on.
type DatabaseProvider interface {
	// Get returns the value for key, or nil without error when the key is absent.
	Get(key []byte) ([]byte, error)

	Put(key, value []byte) error

	Delete(key []byte) error

	Has(key []byte) (bool, error)

	Close() error

	// Batch returns a new batch whose writes become visible together on Write.
	Batch() DatabaseBatch
}

// IterableProvider extends DatabaseProvider with prefix iteration.
type IterableProvider interface {
	DatabaseProvider

	// IteratePrefix calls callback for every key with the given prefix in key order until the
	// callback returns false.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// DatabaseBatch collects writes and applies them atomically.
type DatabaseBatch interface {
	Put(key, value []byte)

	Delete(key []byte)

	// Write commits all operations in the batch
	Write() error

	// Reset clears the batch
	Reset()

	// Close releases batch resources
	Close() error
}

// batchOp is one queued write for backends whose batches are replayed inside a transaction.
type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}
