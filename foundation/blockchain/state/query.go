package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/events"
)

// Genesis returns the origin block of the chain.
func (s *State) Genesis() (database.Block, error) {
	return s.bc.Origin()
}

// LatestBlock returns the block at the tip of the chain.
func (s *State) LatestBlock() (database.Block, error) {
	return s.bc.GetBlock(s.bc.Tip())
}

// Blocks returns every block from the tip back to the origin.
func (s *State) Blocks() ([]database.Block, error) {
	return s.bc.Blocks()
}

// Balance returns the spendable value held by the address.
func (s *State) Balance(address string) (uint64, error) {
	return s.bc.Balance(address)
}

// UnspentOutputs returns the outputs locked with the address that are
// still spendable.
func (s *State) UnspentOutputs(address string) ([]database.UnspentOutput, error) {
	return s.bc.FindUnspentOutputs(address)
}

// Verify checks the integrity of every stored block.
func (s *State) Verify() error {
	err := s.bc.Verify()

	msg := "ok"
	if err != nil {
		msg = err.Error()
	}
	s.send(events.Event{Type: events.TypeVerified, Message: msg})

	return err
}
