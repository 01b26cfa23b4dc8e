package db

import (
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// staged values carry a one-byte tag so deletes can mask keys of the base
const (
	stagedPut byte = iota
	stagedDelete
)

// OverlayProvider stages writes in memory on top of a base provider. Reads see staged writes
// first and fall through to the base. Commit applies everything to the base in one batch;
// Discard drops it. Callers use it to make a multi-step ledger flow all-or-nothing.
type OverlayProvider struct {
	mu     sync.RWMutex
	base   DatabaseProvider
	staged *memdb.DB
}

func NewOverlayProvider(base DatabaseProvider) *OverlayProvider {
	return &OverlayProvider{
		base:   base,
		staged: memdb.New(comparer.DefaultComparer, 0),
	}
}

// lookup returns the staged entry for key; found is false when the key was never staged.
func (o *OverlayProvider) lookup(key []byte) (value []byte, deleted, found bool, err error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	entry, err := o.staged.Get(key)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, false, false, nil
	}
	if err != nil {
		return nil, false, false, fmt.Errorf("overlay get: %w", err)
	}
	if entry[0] == stagedDelete {
		return nil, true, true, nil
	}
	return append([]byte(nil), entry[1:]...), false, true, nil
}

func (o *OverlayProvider) Get(key []byte) ([]byte, error) {
	value, _, found, err := o.lookup(key)
	if err != nil || found {
		return value, err
	}
	return o.base.Get(key)
}

func (o *OverlayProvider) Put(key, value []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.put(key, value)
}

func (o *OverlayProvider) put(key, value []byte) error {
	entry := make([]byte, 1+len(value))
	entry[0] = stagedPut
	copy(entry[1:], value)
	return o.staged.Put(key, entry)
}

func (o *OverlayProvider) Delete(key []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.del(key)
}

func (o *OverlayProvider) del(key []byte) error {
	return o.staged.Put(key, []byte{stagedDelete})
}

func (o *OverlayProvider) Has(key []byte) (bool, error) {
	_, deleted, found, err := o.lookup(key)
	if err != nil {
		return false, err
	}
	if found {
		return !deleted, nil
	}
	return o.base.Has(key)
}

// Close discards staged writes. The base provider is owned by the caller and stays open.
func (o *OverlayProvider) Close() error {
	o.Discard()
	return nil
}

func (o *OverlayProvider) Batch() DatabaseBatch {
	return &overlayBatch{overlay: o}
}

// IteratePrefix merges staged writes with the base in key order. The base must be iterable;
// its entries are sorted through a scratch memdb since not every backend scans in order.
func (o *OverlayProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	iterable, ok := o.base.(IterableProvider)
	if !ok {
		return fmt.Errorf("overlay base %T does not support iteration", o.base)
	}

	view := memdb.New(comparer.DefaultComparer, 0)
	var putErr error
	if err := iterable.IteratePrefix(prefix, func(key, value []byte) bool {
		putErr = view.Put(key, value)
		return putErr == nil
	}); err != nil {
		return err
	}
	if putErr != nil {
		return putErr
	}

	if err := o.applyStaged(view, prefix); err != nil {
		return err
	}

	iter := view.NewIterator(nil)
	defer iter.Release()
	for iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if !callback(key, value) {
			break
		}
	}
	return iter.Error()
}

// applyStaged replays the staged entries under prefix onto view.
func (o *OverlayProvider) applyStaged(view *memdb.DB, prefix []byte) error {
	o.mu.RLock()
	defer o.mu.RUnlock()

	iter := o.staged.NewIterator(util.BytesPrefix(prefix))
	defer iter.Release()
	for iter.Next() {
		entry := iter.Value()
		if entry[0] == stagedDelete {
			if err := view.Delete(iter.Key()); err != nil && !errors.Is(err, memdb.ErrNotFound) {
				return err
			}
			continue
		}
		if err := view.Put(iter.Key(), entry[1:]); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Pending returns the number of staged key changes.
func (o *OverlayProvider) Pending() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.staged.Len()
}

// Commit writes every staged change to the base in a single batch and clears the overlay.
// On failure the staged changes are kept so the caller may retry or Discard.
func (o *OverlayProvider) Commit() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := NewDBTxManager(o.base).WithBatch(func(batch DatabaseBatch) error {
		iter := o.staged.NewIterator(nil)
		defer iter.Release()
		for iter.Next() {
			entry := iter.Value()
			if entry[0] == stagedDelete {
				batch.Delete(iter.Key())
			} else {
				batch.Put(iter.Key(), entry[1:])
			}
		}
		return iter.Error()
	})
	if err != nil {
		return fmt.Errorf("overlay commit: %w", err)
	}

	o.staged.Reset()
	return nil
}

// Discard drops every staged change.
func (o *OverlayProvider) Discard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged.Reset()
}

type overlayBatch struct {
	overlay *OverlayProvider
	ops     []batchOp
}

func (b *overlayBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *overlayBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), delete: true})
}

func (b *overlayBatch) Write() error {
	b.overlay.mu.Lock()
	defer b.overlay.mu.Unlock()
	for _, op := range b.ops {
		var err error
		if op.delete {
			err = b.overlay.del(op.key)
		} else {
			err = b.overlay.put(op.key, op.value)
		}
		if err != nil {
			return fmt.Errorf("overlay batch: %w", err)
		}
	}
	b.ops = nil
	return nil
}

func (b *overlayBatch) Reset() {
	b.ops = nil
}

func (b *overlayBatch) Close() error {
	return nil
}
