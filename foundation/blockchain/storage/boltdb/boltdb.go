// Package boltdb implements the storage.Store contract on top of bbolt.
// All keys live in a single bucket.
package boltdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	bolt "go.etcd.io/bbolt"
)

// bucket holds every block and the tip pointer.
var bucket = []byte("blocks")

// Bolt represents a bbolt database file.
type Bolt struct {
	db *bolt.DB
}

// New opens or creates the database file at the specified path.
func New(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Get returns a copy of the value for the key. Values returned by bbolt are
// only valid inside the transaction.
func (b *Bolt) Get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return storage.ErrNotFound
		}
		value = append([]byte(nil), v...)
		return nil
	})

	return value, err
}

// Has reports whether the key exists.
func (b *Bolt) Has(key []byte) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(bucket).Get(key) != nil
		return nil
	})

	return exists, err
}

// Batch returns a batch that is written in one read-write transaction.
func (b *Bolt) Batch() storage.Batch {
	return &batch{db: b.db}
}

// =============================================================================

type batch struct {
	storage.Ops
	db *bolt.DB
}

// Write commits every put in a single transaction.
func (b *batch) Write() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		for _, op := range b.List {
			if err := bkt.Put(op.Key, op.Value); err != nil {
				return fmt.Errorf("put key %x: %w", op.Key, err)
			}
		}
		return nil
	})
}
