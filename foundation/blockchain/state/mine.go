package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/events"
)

// Send moves amount from one address to another by mining a block holding
// the transfer. When a miner address is configured the block also pays the
// subsidy to the miner.
func (s *State) Send(from string, to string, amount uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Send: started: from[%s] to[%s] amount[%d]", from, to, amount)
	defer s.evHandler("state: Send: completed")

	tx, err := s.bc.NewTransfer(from, to, amount)
	if err != nil {
		return database.Block{}, err
	}

	txs := []database.Transaction{tx}
	if s.minerAddress != "" {
		reward, err := database.NewCoinbaseTx(s.minerAddress, database.UniqueRewardMemo(s.minerAddress))
		if err != nil {
			return database.Block{}, err
		}
		txs = append(txs, reward)
	}

	return s.mine(txs)
}

// Mine mines a block holding a single coinbase paying the subsidy to the
// address. An empty memo is replaced by a unique one so two rewards to the
// same address never share a transaction id.
func (s *State) Mine(address string, memo string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: Mine: started: address[%s]", address)
	defer s.evHandler("state: Mine: completed")

	if memo == "" {
		memo = database.UniqueRewardMemo(address)
	}

	tx, err := database.NewCoinbaseTx(address, memo)
	if err != nil {
		return database.Block{}, err
	}

	return s.mine([]database.Transaction{tx})
}

// =============================================================================

// mine must be called with the lock held.
func (s *State) mine(txs []database.Transaction) (database.Block, error) {
	block, err := s.bc.MineBlock(txs)
	if err != nil {
		return database.Block{}, err
	}

	s.send(events.Event{
		Type:    events.TypeBlockMined,
		Hash:    signature.Hex(block.Hash),
		TxCount: len(block.Transactions),
	})

	return block, nil
}
