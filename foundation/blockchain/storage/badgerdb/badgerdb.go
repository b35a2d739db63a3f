// Package badgerdb implements the storage.Store contract on top of Badger.
package badgerdb

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/badger/v2/options"
)

// DefaultOptions returns the Badger options used for the block store. A
// ledger holds few, small values so the tables are kept small.
func DefaultOptions(dir string) badger.Options {
	return badger.DefaultOptions(dir).
		WithMaxTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithTableLoadingMode(options.FileIO).
		WithValueLogLoadingMode(options.FileIO).
		WithNumMemtables(1).
		WithSyncWrites(true).
		WithLogger(nil)
}

// Badger represents a Badger database directory.
type Badger struct {
	db *badger.DB
}

// New opens or creates the database in the specified directory.
func New(dir string) (*Badger, error) {
	return NewWithOptions(DefaultOptions(dir))
}

// NewWithOptions opens the database with the caller's options. Tests use it
// to run Badger in memory.
func NewWithOptions(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database %s: %w", opts.Dir, err)
	}

	return &Badger{db: db}, nil
}

// Close releases the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Get returns a copy of the value for the key.
func (b *Badger) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) || errors.Is(err, badger.ErrEmptyKey) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("could not get value (key: %x): %w", key, err)
		}

		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("could not copy value (key: %x): %w", key, err)
		}

		return nil
	})

	return value, err
}

// Has reports whether the key exists.
func (b *Badger) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return true, nil
}

// Batch returns a batch written in one Badger transaction.
func (b *Badger) Batch() storage.Batch {
	return &batch{db: b.db}
}

// =============================================================================

type batch struct {
	storage.Ops
	db *badger.DB
}

// Write commits every put in a single transaction.
func (b *batch) Write() error {
	return b.db.Update(func(tx *badger.Txn) error {
		for _, op := range b.List {
			if err := tx.Set(op.Key, op.Value); err != nil {
				return fmt.Errorf("could not set value (key: %x): %w", op.Key, err)
			}
		}
		return nil
	})
}
