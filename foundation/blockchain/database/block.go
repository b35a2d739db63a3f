package database

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Block represents a group of transactions sealed by proof of work.
type Block struct {
	Timestamp     uint64        `json:"timestamp" cbor:"1,keyasint"`       // Time the block was mined.
	Transactions  []Transaction `json:"transactions" cbor:"2,keyasint"`    // Ordered, the order is part of the hash.
	PrevBlockHash []byte        `json:"prev_block_hash" cbor:"3,keyasint"` // Empty for the origin block.
	Hash          []byte        `json:"hash" cbor:"4,keyasint"`            // Sealing hash for Nonce.
	Nonce         uint64        `json:"nonce" cbor:"5,keyasint"`           // Value that solves the puzzle.
}

// NewBlock constructs a block on top of prevHash and performs the work to
// find the nonce that seals it. The call blocks until the puzzle is solved.
func NewBlock(txs []Transaction, prevHash []byte, evHandler func(v string, args ...any)) (Block, error) {
	nb := Block{
		Timestamp:     uint64(time.Now().UTC().Unix()),
		Transactions:  txs,
		PrevBlockHash: append([]byte(nil), prevHash...),
	}

	if evHandler != nil {
		for _, tx := range txs {
			evHandler("database: NewBlock: MINING: tx[%s]", tx)
		}
	}

	seal, err := pow.New(nb).Run(evHandler)
	if err != nil {
		return Block{}, fmt.Errorf("sealing block: %w", err)
	}

	nb.Hash = seal.Hash
	nb.Nonce = seal.Nonce

	return nb, nil
}

// HashTransactions returns the digest of the transaction ids concatenated
// in block order.
func (b Block) HashTransactions() []byte {
	ids := make([][]byte, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = tx.ID
	}

	return signature.HashConcat(ids...)
}

// Prev returns the hash of the parent block. It returns false for the
// origin block.
func (b Block) Prev() ([]byte, bool) {
	if len(b.PrevBlockHash) == 0 {
		return nil, false
	}
	return b.PrevBlockHash, true
}

// IsOrigin reports whether the block is the first block of the chain.
func (b Block) IsOrigin() bool {
	_, ok := b.Prev()
	return !ok
}

// Validate reports whether the stored nonce solves the puzzle for the
// block's content.
func (b Block) Validate() bool {
	return pow.New(b).Validate(b.Nonce)
}

// VerifyHash checks the seal and that the stored hash is the sealing hash
// of the stored nonce.
func (b Block) VerifyHash() error {
	p := pow.New(b)

	hash := p.Hash(b.Nonce)
	if !bytes.Equal(hash, b.Hash) {
		return fmt.Errorf("block hash mismatch, got %s, exp %s", signature.Hex(b.Hash), signature.Hex(hash))
	}

	if !pow.Solved(hash) {
		return fmt.Errorf("%s invalid block hash", signature.Hex(hash))
	}

	return nil
}

// clone returns a deep copy of the block.
func (b Block) clone() Block {
	nb := b
	nb.PrevBlockHash = cloneBytes(b.PrevBlockHash)
	nb.Hash = cloneBytes(b.Hash)

	if b.Transactions != nil {
		nb.Transactions = make([]Transaction, len(b.Transactions))
		for i, tx := range b.Transactions {
			nb.Transactions[i] = tx.clone()
		}
	}

	return nb
}

// cloneBytes copies b keeping the difference between nil and empty.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

// =============================================================================
// The pow.Candidate interface.

// PrevHash returns the parent hash used by the puzzle.
func (b Block) PrevHash() []byte {
	return b.PrevBlockHash
}

// PayloadDigest returns the transaction digest used by the puzzle.
func (b Block) PayloadDigest() []byte {
	return b.HashTransactions()
}

// Time returns the timestamp used by the puzzle.
func (b Block) Time() uint64 {
	return b.Timestamp
}
