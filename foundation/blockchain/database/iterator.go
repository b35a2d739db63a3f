package database

import "errors"

// ErrIteratorDone is returned by Next once the origin block was returned.
var ErrIteratorDone = errors.New("end of chain")

// Iterator walks the chain from a starting hash back to the origin block.
type Iterator struct {
	bc      *Blockchain
	current []byte // Hash of the block returned by the next call to Next.
	done    bool   // The origin block has been returned.
}

// Iterator returns an iterator starting at the tip.
func (bc *Blockchain) Iterator() *Iterator {
	return bc.IteratorFrom(bc.Tip())
}

// IteratorFrom returns an iterator starting at the specified block hash.
func (bc *Blockchain) IteratorFrom(hash []byte) *Iterator {
	return &Iterator{
		bc:      bc,
		current: append([]byte(nil), hash...),
		done:    len(hash) == 0,
	}
}

// Next returns the current block and moves to its parent. A block that
// can't be read or decoded is returned as an error and the iterator stays
// on it.
func (it *Iterator) Next() (Block, error) {
	if it.done {
		return Block{}, ErrIteratorDone
	}

	block, err := it.bc.GetBlock(it.current)
	if err != nil {
		return Block{}, err
	}

	prev, ok := block.Prev()
	if !ok {
		it.done = true
		it.current = nil
		return block, nil
	}

	it.current = prev
	return block, nil
}

// Done reports whether the origin block has been returned.
func (it *Iterator) Done() bool {
	return it.done
}
