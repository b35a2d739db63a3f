// Package storage defines the contract the blockchain requires from the
// embedded key value store holding its blocks.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is an ordered byte key, byte value store. Implementations must be
// safe for concurrent use.
type Store interface {

	// Get returns a copy of the value stored for the key or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Has reports whether the key exists.
	Has(key []byte) (bool, error)

	// Batch returns a new batch for atomic writes.
	Batch() Batch

	// Close releases the store.
	Close() error
}

// Batch collects writes that are applied all together or not at all.
type Batch interface {

	// Put adds a key value pair to the batch.
	Put(key, value []byte)

	// Write commits all the puts of the batch in one transaction.
	Write() error
}

// Set of supported backends.
const (
	BackendBolt   = "bolt"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config selects the backend and the location of the store on disk.
type Config struct {
	Backend string
	Path    string
}

// Op is a single write recorded by a batch.
type Op struct {
	Key   []byte
	Value []byte
}

// Ops is a reusable batch buffer for backends that apply the writes
// in their own transaction on Write.
type Ops struct {
	List []Op
}

// Put copies the key and value so the caller can reuse its slices.
func (o *Ops) Put(key, value []byte) {
	o.List = append(o.List, Op{
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), value...),
	})
}
