package database

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/hashicorp/go-multierror"
)

// Verify walks the chain from the tip to the origin and checks every block:
// it is stored under its own hash, its seal holds for its content, every
// transaction id matches its content and the origin holds one coinbase.
// Every problem found is returned, the walk only stops early when a block
// can't be read.
func (bc *Blockchain) Verify() error {
	var errs error

	expected := bc.Tip()
	var blocks int

	iter := bc.Iterator()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			errs = multierror.Append(errs, err)
			break
		}
		blocks++

		bc.evHandler("database: Verify: blk[%s]: check: stored under its hash", signature.Hex(expected))
		if !bytes.Equal(block.Hash, expected) {
			errs = multierror.Append(errs, fmt.Errorf("block stored as %s reports hash %s", signature.Hex(expected), signature.Hex(block.Hash)))
		}

		bc.evHandler("database: Verify: blk[%s]: check: block hash has been solved", signature.Hex(expected))
		if err := block.VerifyHash(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("block %s: %w", signature.Hex(expected), err))
		}

		for _, tx := range block.Transactions {
			id, err := tx.Hash()
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if !bytes.Equal(id, tx.ID) {
				errs = multierror.Append(errs, fmt.Errorf("block %s: transaction %s has id of different content", signature.Hex(expected), signature.Hex(tx.ID)))
			}
		}

		if block.IsOrigin() {
			bc.evHandler("database: Verify: blk[%s]: check: origin holds one coinbase", signature.Hex(expected))
			if len(block.Transactions) != 1 || !block.Transactions[0].IsCoinbase() {
				errs = multierror.Append(errs, fmt.Errorf("origin block %s must hold exactly one coinbase transaction", signature.Hex(expected)))
			}
		}

		expected = block.PrevBlockHash
	}

	bc.evHandler("database: Verify: completed: blocks[%d]", blocks)

	return errs
}
