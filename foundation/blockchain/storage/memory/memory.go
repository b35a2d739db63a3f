// Package memory implements the storage.Store contract with a map. It is
// meant for tests and for running a throwaway chain.
package memory

import (
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
)

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("memory store closed")

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a map. This implements the storage.Store interface.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New constructs an Memory value for use.
func New() (*Memory, error) {
	return &Memory{data: make(map[string][]byte)}, nil
}

// Close marks the store as closed. The data is kept so a test can inspect it.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}

// Get returns a copy of the value for the key.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	v, exists := m.data[string(key)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

// Has reports whether the key exists.
func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}

	_, exists := m.data[string(key)]
	return exists, nil
}

// Batch returns a batch applied under the store's write lock.
func (m *Memory) Batch() storage.Batch {
	return &batch{mem: m}
}

// Len returns the number of keys held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// =============================================================================

type batch struct {
	storage.Ops
	mem *Memory
}

// Write applies every put while holding the lock so readers never see
// part of the batch.
func (b *batch) Write() error {
	b.mem.mu.Lock()
	defer b.mem.mu.Unlock()

	if b.mem.closed {
		return ErrClosed
	}

	for _, op := range b.List {
		b.mem.data[string(op.Key)] = op.Value
	}

	return nil
}
