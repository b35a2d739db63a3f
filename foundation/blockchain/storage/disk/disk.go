// Package disk opens the on disk store selected by a storage.Config.
package disk

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/badgerdb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/boltdb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Open constructs the store for the configured backend. An empty backend
// selects bolt.
func Open(cfg storage.Config) (storage.Store, error) {
	switch cfg.Backend {
	case storage.BackendBolt, "":
		strg, err := boltdb.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return strg, nil

	case storage.BackendBadger:
		strg, err := badgerdb.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return strg, nil

	case storage.BackendMemory:
		strg, err := memory.New()
		if err != nil {
			return nil, err
		}
		return strg, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
