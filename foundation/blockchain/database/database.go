// Package database maintains the blockchain in the key value store: blocks
// keyed by hash plus a pointer to the tip, and the unspent output model
// layered on top.
package database

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/encoding/zbor"
	"github.com/dgraph-io/ristretto"
)

// tipKey holds the hash of the most recently mined block.
var tipKey = []byte("last_block_hash")

// codec encodes blocks for the store and transactions for hashing.
var codec = zbor.NewCodec()

// Set of errors returned by the database.
var (
	ErrChainExists   = errors.New("blockchain already exists")
	ErrChainNotFound = errors.New("no existing blockchain found")
	ErrBlockNotFound = errors.New("block not found")
	ErrClosed        = errors.New("use of closed blockchain handle")
)

// Config represents the systems required to open a blockchain.
type Config struct {
	Store     storage.Store
	EvHandler func(v string, args ...any)

	// CacheBlocks is the number of decoded blocks kept in memory. Zero
	// disables the cache.
	CacheBlocks int64
}

// shared is the state every handle on the same store points to.
type shared struct {
	store storage.Store
	cache *ristretto.Cache
	refs  atomic.Int64
}

// acquire adds a reference unless the last one was already released.
func (s *shared) acquire() bool {
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *shared) release() error {
	if s.refs.Add(-1) > 0 {
		return nil
	}

	if s.cache != nil {
		s.cache.Close()
	}
	return s.store.Close()
}

// Blockchain is a handle on a chain persisted in a store. The handle caches
// the tip hash, all other state lives in the store. A handle is safe for
// concurrent use, calls to MineBlock on one handle are serialized.
type Blockchain struct {
	shared    *shared
	evHandler func(v string, args ...any)
	closed    atomic.Bool

	mineMu sync.Mutex

	tipMu sync.RWMutex
	tip   []byte
}

// Create writes the origin block paying the subsidy to address. It fails
// with ErrChainExists if the store already holds a chain. On success the
// returned handle owns the store and closes it on Close.
func Create(cfg Config, address string) (*Blockchain, error) {
	bc, err := newBlockchain(cfg)
	if err != nil {
		return nil, err
	}

	exists, err := bc.shared.store.Has(tipKey)
	if err != nil {
		bc.discard()
		return nil, fmt.Errorf("reading tip: %w", err)
	}
	if exists {
		bc.discard()
		return nil, ErrChainExists
	}

	if err := bc.writeGenesis(address); err != nil {
		bc.discard()
		return nil, err
	}

	return bc, nil
}

// Open loads the chain held by the store. It fails with ErrChainNotFound if
// the store holds no chain.
func Open(cfg Config) (*Blockchain, error) {
	bc, err := newBlockchain(cfg)
	if err != nil {
		return nil, err
	}

	tip, err := bc.shared.store.Get(tipKey)
	if err != nil {
		bc.discard()
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrChainNotFound
		}
		return nil, fmt.Errorf("reading tip: %w", err)
	}
	bc.setTip(tip)

	return bc, nil
}

// OpenOrCreate loads the chain held by the store, creating it with an origin
// block paying the subsidy to address when the store is empty.
func OpenOrCreate(cfg Config, address string) (*Blockchain, error) {
	bc, err := Open(cfg)
	if err == nil {
		return bc, nil
	}
	if !errors.Is(err, ErrChainNotFound) {
		return nil, err
	}

	return Create(cfg, address)
}

func newBlockchain(cfg Config) (*Blockchain, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	sh := shared{store: cfg.Store}
	sh.refs.Store(1)

	if cfg.CacheBlocks > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: cfg.CacheBlocks * 10,
			MaxCost:     cfg.CacheBlocks,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("creating block cache: %w", err)
		}
		sh.cache = cache
	}

	bc := Blockchain{
		shared:    &sh,
		evHandler: ev,
	}

	return &bc, nil
}

// discard drops a handle that failed to open. The store stays open since
// the caller still owns it.
func (bc *Blockchain) discard() {
	if bc.shared.cache != nil {
		bc.shared.cache.Close()
	}
}

// Clone returns a new handle on the same store. The store is closed once
// every handle is closed. Cloning a closed handle, or a handle whose store
// is already closed, returns a closed handle.
func (bc *Blockchain) Clone() *Blockchain {
	clone := Blockchain{
		shared:    bc.shared,
		evHandler: bc.evHandler,
		tip:       bc.Tip(),
	}

	if bc.closed.Load() || !bc.shared.acquire() {
		clone.closed.Store(true)
	}

	return &clone
}

// Close releases the handle. Calling Close more than once is a no-op.
func (bc *Blockchain) Close() error {
	if bc.closed.Swap(true) {
		return nil
	}
	return bc.shared.release()
}

// Tip returns the hash of the most recently mined block.
func (bc *Blockchain) Tip() []byte {
	bc.tipMu.RLock()
	defer bc.tipMu.RUnlock()

	return append([]byte(nil), bc.tip...)
}

func (bc *Blockchain) setTip(hash []byte) {
	bc.tipMu.Lock()
	defer bc.tipMu.Unlock()

	bc.tip = append([]byte(nil), hash...)
}

// MineBlock seals a block holding the transactions on top of the tip and
// writes it to the store. The block and the new tip pointer are written in
// one batch. The handle's tip only moves once that write succeeded.
func (bc *Blockchain) MineBlock(txs []Transaction) (Block, error) {
	bc.mineMu.Lock()
	defer bc.mineMu.Unlock()

	if bc.closed.Load() {
		return Block{}, ErrClosed
	}

	tip := bc.Tip()

	bc.evHandler("database: MineBlock: started: prevBlk[%s]: txs[%d]", signature.Hex(tip), len(txs))
	defer bc.evHandler("database: MineBlock: completed")

	block, err := NewBlock(txs, tip, bc.evHandler)
	if err != nil {
		return Block{}, err
	}

	if err := bc.write(block); err != nil {
		return Block{}, err
	}

	bc.setTip(block.Hash)
	bc.evHandler("database: MineBlock: SOLVED: newBlk[%s]", signature.Hex(block.Hash))

	return block, nil
}

// GetBlock returns the block stored for the hash. The caller owns the
// returned block, changing it never changes what later calls return.
func (bc *Blockchain) GetBlock(hash []byte) (Block, error) {
	if bc.closed.Load() {
		return Block{}, ErrClosed
	}

	if bc.shared.cache != nil {
		if v, found := bc.shared.cache.Get(string(hash)); found {
			return v.(Block).clone(), nil
		}
	}

	data, err := bc.shared.store.Get(hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, signature.Hex(hash))
		}
		return Block{}, fmt.Errorf("reading block %s: %w", signature.Hex(hash), err)
	}

	var block Block
	if err := codec.Unmarshal(data, &block); err != nil {
		return Block{}, fmt.Errorf("deserializing block %s: %w", signature.Hex(hash), err)
	}

	if bc.shared.cache != nil {
		bc.shared.cache.Set(string(hash), block.clone(), 1)
	}

	return block, nil
}

// Blocks returns every block from the tip back to the origin.
func (bc *Blockchain) Blocks() ([]Block, error) {
	var blocks []Block

	iter := bc.Iterator()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// Origin returns the first block of the chain.
func (bc *Blockchain) Origin() (Block, error) {
	var origin Block

	iter := bc.Iterator()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return Block{}, err
		}
		origin = block
	}

	return origin, nil
}

// =============================================================================

func (bc *Blockchain) writeGenesis(address string) error {
	bc.evHandler("database: writeGenesis: address[%s]", address)

	coinbase, err := NewCoinbaseTx(address, "")
	if err != nil {
		return fmt.Errorf("creating coinbase: %w", err)
	}

	genesis, err := NewBlock([]Transaction{coinbase}, nil, bc.evHandler)
	if err != nil {
		return err
	}

	if err := bc.write(genesis); err != nil {
		return err
	}

	bc.setTip(genesis.Hash)
	return nil
}

// write stores the block and moves the tip pointer to it in one batch.
func (bc *Blockchain) write(block Block) error {
	if len(block.Hash) == 0 || bytes.Equal(block.Hash, tipKey) {
		return errors.New("block has no usable hash")
	}

	data, err := codec.Marshal(block)
	if err != nil {
		return fmt.Errorf("serializing block: %w", err)
	}

	batch := bc.shared.store.Batch()
	batch.Put(block.Hash, data)
	batch.Put(tipKey, block.Hash)

	if err := batch.Write(); err != nil {
		return fmt.Errorf("writing block %s: %w", signature.Hex(block.Hash), err)
	}

	return nil
}
