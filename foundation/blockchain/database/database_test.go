package database_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/boltdb"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// failingStore accepts reads but fails every batch write.
type failingStore struct {
	storage.Store
}

func (fs failingStore) Batch() storage.Batch {
	return failingBatch{}
}

type failingBatch struct{}

func (failingBatch) Put(key, value []byte) {}
func (failingBatch) Write() error          { return errors.New("disk full") }

func newMemoryChain(t *testing.T, address string) (*database.Blockchain, *memory.Memory) {
	t.Helper()

	mem, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a memory store: %v", failed, err)
	}

	bc, err := database.Create(database.Config{Store: mem}, address)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the chain: %v", failed, err)
	}

	return bc, mem
}

// =============================================================================

func Test_Create(t *testing.T) {
	t.Log("Given the need to create a new chain.")
	{
		t.Logf("\tTest 0:\tWhen creating a chain rewarding \"A\".")
		{
			bc, mem := newMemoryChain(t, "A")
			defer bc.Close()

			origin, err := bc.Origin()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the origin: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to read the origin.", success)

			if !bytes.Equal(origin.Hash, bc.Tip()) {
				t.Fatalf("\t%s\tTest 0:\tShould have the origin as tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have the origin as tip.", success)

			if !origin.IsOrigin() {
				t.Fatalf("\t%s\tTest 0:\tShould have an empty previous hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have an empty previous hash.", success)

			if len(origin.Transactions) != 1 || !origin.Transactions[0].IsCoinbase() {
				t.Fatalf("\t%s\tTest 0:\tShould hold one coinbase transaction.", failed)
			}
			out := origin.Transactions[0].Outputs[0]
			if out.Value != 10 || out.ScriptPubKey != "A" {
				t.Fatalf("\t%s\tTest 0:\tShould pay 10 to A, got %+v.", failed, out)
			}
			t.Logf("\t%s\tTest 0:\tShould hold one coinbase paying 10 to A.", success)

			// One block plus the tip pointer.
			if mem.Len() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould store the block and the tip, got %d keys.", failed, mem.Len())
			}
			t.Logf("\t%s\tTest 0:\tShould store the block and the tip.", success)

			_, err = database.Create(database.Config{Store: mem}, "B")
			if !errors.Is(err, database.ErrChainExists) {
				t.Fatalf("\t%s\tTest 0:\tShould refuse to create a second chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould refuse to create a second chain.", success)

			if mem.Closed() {
				t.Fatalf("\t%s\tTest 0:\tShould leave the store open after a failed create.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the store open after a failed create.", success)
		}

		t.Logf("\tTest 1:\tWhen opening an empty store.")
		{
			mem, _ := memory.New()

			_, err := database.Open(database.Config{Store: mem})
			if !errors.Is(err, database.ErrChainNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould report no chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report no chain.", success)
		}
	}
}

func Test_OpenOrCreate(t *testing.T) {
	t.Log("Given the need to reopen a chain without creating it twice.")
	{
		t.Logf("\tTest 0:\tWhen opening the same store twice.")
		{
			mem, _ := memory.New()
			cfg := database.Config{Store: mem}

			bc1, err := database.OpenOrCreate(cfg, "A")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create the chain: %v", failed, err)
			}
			origin1, err := bc1.Origin()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the origin: %v", failed, err)
			}

			bc2, err := database.OpenOrCreate(cfg, "B")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open the chain: %v", failed, err)
			}
			origin2, err := bc2.Origin()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the origin: %v", failed, err)
			}

			if !bytes.Equal(bc1.Tip(), bc2.Tip()) {
				t.Fatalf("\t%s\tTest 0:\tShould get the same tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same tip.", success)

			if !bytes.Equal(origin1.Hash, origin2.Hash) || origin2.Transactions[0].Outputs[0].ScriptPubKey != "A" {
				t.Fatalf("\t%s\tTest 0:\tShould get the same origin.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the same origin.", success)

			if mem.Len() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould not create a second origin, got %d keys.", failed, mem.Len())
			}
			t.Logf("\t%s\tTest 0:\tShould not create a second origin.", success)
		}
	}
}

func Test_MineAndReopen(t *testing.T) {
	t.Log("Given the need to persist mined blocks.")
	{
		t.Logf("\tTest 0:\tWhen mining on a bolt store and reopening it.")
		{
			path := filepath.Join(t.TempDir(), "blocks.db")

			strg, err := boltdb.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open the store: %v", failed, err)
			}

			bc, err := database.Create(database.Config{Store: strg}, "A")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create the chain: %v", failed, err)
			}

			tx, err := database.NewCoinbaseTx("A", "second")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a coinbase: %v", failed, err)
			}

			block, err := bc.MineBlock([]database.Transaction{tx})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if !bytes.Equal(bc.Tip(), block.Hash) {
				t.Fatalf("\t%s\tTest 0:\tShould move the tip to the new block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould move the tip to the new block.", success)

			if err := bc.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to close the chain: %v", failed, err)
			}

			strg, err = boltdb.New(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reopen the store: %v", failed, err)
			}

			reopened, err := database.Open(database.Config{Store: strg})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reopen the chain: %v", failed, err)
			}
			defer reopened.Close()

			if !bytes.Equal(reopened.Tip(), block.Hash) {
				t.Fatalf("\t%s\tTest 0:\tShould reopen with the mined block as tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reopen with the mined block as tip.", success)

			got, err := reopened.GetBlock(block.Hash)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the block back: %v", failed, err)
			}
			if got.Nonce != block.Nonce || got.Timestamp != block.Timestamp || !bytes.Equal(got.PrevBlockHash, block.PrevBlockHash) {
				t.Fatalf("\t%s\tTest 0:\tShould read back the same block.", failed)
			}
			if !bytes.Equal(got.Transactions[0].ID, tx.ID) || got.Transactions[0].Inputs[0].ScriptSig != "second" {
				t.Fatalf("\t%s\tTest 0:\tShould read back the same transactions.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould read back the same block.", success)
		}

		t.Logf("\tTest 1:\tWhen the batch write fails.")
		{
			bc, mem := newMemoryChain(t, "A")
			tip := bc.Tip()

			broken, err := database.Open(database.Config{Store: failingStore{Store: mem}})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to open the chain: %v", failed, err)
			}

			tx, _ := database.NewCoinbaseTx("A", "lost")
			if _, err := broken.MineBlock([]database.Transaction{tx}); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould report the write failure.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould report the write failure.", success)

			if !bytes.Equal(broken.Tip(), tip) {
				t.Fatalf("\t%s\tTest 1:\tShould leave the tip unchanged.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the tip unchanged.", success)

			if mem.Len() != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould not store the block, got %d keys.", failed, mem.Len())
			}
			t.Logf("\t%s\tTest 1:\tShould not store the block.", success)
		}
	}
}

func Test_Iterator(t *testing.T) {
	t.Log("Given the need to walk the chain from the tip.")
	{
		t.Logf("\tTest 0:\tWhen the chain holds three mined blocks and the origin.")
		{
			bc, _ := newMemoryChain(t, "A")
			defer bc.Close()

			hashes := [][]byte{bc.Tip()}
			for i := 0; i < 3; i++ {
				tx, err := database.NewCoinbaseTx("A", string(rune('a'+i)))
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to construct a coinbase: %v", failed, err)
				}
				block, err := bc.MineBlock([]database.Transaction{tx})
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to mine block %d: %v", failed, i, err)
				}
				hashes = append(hashes, block.Hash)
			}

			iter := bc.Iterator()

			var got [][]byte
			for !iter.Done() {
				block, err := iter.Next()
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to read every block: %v", failed, err)
				}
				got = append(got, block.Hash)

				if len(got) > 4 {
					t.Fatalf("\t%s\tTest 0:\tShould stop after the origin.", failed)
				}
			}

			if len(got) != 4 {
				t.Fatalf("\t%s\tTest 0:\tShould get 4 blocks, got %d.", failed, len(got))
			}
			t.Logf("\t%s\tTest 0:\tShould get 4 blocks.", success)

			for i := range got {
				if !bytes.Equal(got[i], hashes[len(hashes)-1-i]) {
					t.Fatalf("\t%s\tTest 0:\tShould get block %d in reverse order.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould get the blocks newest first.", success)

			if _, err := iter.Next(); !errors.Is(err, database.ErrIteratorDone) {
				t.Fatalf("\t%s\tTest 0:\tShould report the end of the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report the end of the chain.", success)

			blocks, err := bc.Blocks()
			if err != nil || len(blocks) != 4 {
				t.Fatalf("\t%s\tTest 0:\tShould collect 4 blocks: %v", failed, err)
			}
			for i, b := range blocks {
				if i < 3 && !bytes.Equal(b.PrevBlockHash, blocks[i+1].Hash) {
					t.Fatalf("\t%s\tTest 0:\tShould link block %d to its parent.", failed, i)
				}
				if !b.Validate() {
					t.Fatalf("\t%s\tTest 0:\tShould validate block %d.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould link and validate every block.", success)
		}

		t.Logf("\tTest 1:\tWhen a block is missing from the store.")
		{
			bc, mem := newMemoryChain(t, "A")
			defer bc.Close()

			iter := bc.IteratorFrom([]byte("no such block"))
			if _, err := iter.Next(); !errors.Is(err, database.ErrBlockNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould surface the missing block: %v", failed, err)
			}
			if iter.Done() {
				t.Fatalf("\t%s\tTest 1:\tShould not treat a missing block as the end.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould surface the missing block.", success)

			batch := mem.Batch()
			batch.Put([]byte("garbage"), []byte("not a block"))
			if err := batch.Write(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write: %v", failed, err)
			}

			iter = bc.IteratorFrom([]byte("garbage"))
			if _, err := iter.Next(); err == nil || errors.Is(err, database.ErrBlockNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould surface the decode failure: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould surface the decode failure.", success)
		}
	}
}

func Test_Clone(t *testing.T) {
	t.Log("Given the need to share one store between handles.")
	{
		t.Logf("\tTest 0:\tWhen closing a clone and then the original.")
		{
			bc, mem := newMemoryChain(t, "A")

			clone := bc.Clone()
			if !bytes.Equal(clone.Tip(), bc.Tip()) {
				t.Fatalf("\t%s\tTest 0:\tShould share the tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould share the tip.", success)

			if err := clone.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to close the clone: %v", failed, err)
			}
			clone.Close()

			if mem.Closed() {
				t.Fatalf("\t%s\tTest 0:\tShould keep the store open while a handle remains.", failed)
			}
			if _, err := bc.Origin(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould still read through the original: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the store open while a handle remains.", success)

			if err := bc.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to close the original: %v", failed, err)
			}
			if !mem.Closed() {
				t.Fatalf("\t%s\tTest 0:\tShould close the store with the last handle.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould close the store with the last handle.", success)
		}

		t.Logf("\tTest 1:\tWhen cloning a closed handle.")
		{
			bc, mem := newMemoryChain(t, "A")

			clone := bc.Clone()
			clone.Close()

			dead := clone.Clone()
			if _, err := dead.Blocks(); !errors.Is(err, database.ErrClosed) {
				t.Fatalf("\t%s\tTest 1:\tShould get a closed handle from a closed handle: %v", failed, err)
			}
			if _, err := dead.MineBlock(nil); !errors.Is(err, database.ErrClosed) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to mine on a closed handle: %v", failed, err)
			}
			if err := dead.Close(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to close a closed clone: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get a closed handle from a closed handle.", success)

			if _, err := bc.Origin(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould still read through the original: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould still read through the original.", success)

			bc.Close()
			if !mem.Closed() {
				t.Fatalf("\t%s\tTest 1:\tShould close the store with the last handle.", failed)
			}

			revived := bc.Clone()
			if _, err := revived.Origin(); !errors.Is(err, database.ErrClosed) {
				t.Fatalf("\t%s\tTest 1:\tShould not revive a closed store: %v", failed, err)
			}
			revived.Close()
			if !mem.Closed() {
				t.Fatalf("\t%s\tTest 1:\tShould leave the store closed.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould not revive a closed store.", success)
		}
	}
}

func Test_BlockCache(t *testing.T) {
	t.Log("Given the need to cache decoded blocks.")
	{
		t.Logf("\tTest 0:\tWhen reading through a cached chain.")
		{
			mem, _ := memory.New()

			bc, err := database.Create(database.Config{Store: mem, CacheBlocks: 16}, "A")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create the chain: %v", failed, err)
			}
			defer bc.Close()

			for i := 0; i < 3; i++ {
				origin, err := bc.Origin()
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to read the origin: %v", failed, err)
				}
				if !bytes.Equal(origin.Hash, bc.Tip()) {
					t.Fatalf("\t%s\tTest 0:\tShould read the same block every time.", failed)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould read the same block every time.", success)
		}
	}
}
