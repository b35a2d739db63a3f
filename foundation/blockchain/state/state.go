// Package state is the core API for the node and serializes every write
// made to the blockchain.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/events"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start the node state.
type Config struct {
	Blockchain   *database.Blockchain
	MinerAddress string
	Events       *events.Events
	EvHandler    EventHandler
}

// State manages the blockchain database. Writes are serialized, reads go
// straight to the blockchain and never wait for a block being mined.
type State struct {
	minerAddress string
	evHandler    EventHandler
	events       *events.Events

	mu sync.Mutex // Held by writes for the whole proof of work search.
	bc *database.Blockchain
}

// New constructs the state over an open blockchain. The state takes
// ownership of the blockchain and closes it on Shutdown.
func New(cfg Config) (*State, error) {
	if cfg.Blockchain == nil {
		return nil, errors.New("blockchain is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	state := State{
		minerAddress: cfg.MinerAddress,
		evHandler:    ev,
		events:       cfg.Events,
		bc:           cfg.Blockchain,
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Shutdown: closing blockchain")

	return s.bc.Close()
}

// MinerAddress returns the address rewarded for blocks mined by transfers.
func (s *State) MinerAddress() string {
	return s.minerAddress
}

// send delivers the event to the listeners if any are configured.
func (s *State) send(e events.Event) {
	if s.events != nil {
		s.events.Send(e)
	}
}
