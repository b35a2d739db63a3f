package database_test

import (
	"bytes"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

func Test_NewBlock(t *testing.T) {
	t.Log("Given the need to seal a block.")
	{
		t.Logf("\tTest 0:\tWhen mining a block with two transactions.")
		{
			tx1, err := database.NewCoinbaseTx("A", "first")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a coinbase: %v", failed, err)
			}
			tx2, err := database.NewCoinbaseTx("B", "second")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a coinbase: %v", failed, err)
			}

			prev := signature.Hash([]byte("parent"))

			block, err := database.NewBlock([]database.Transaction{tx1, tx2}, prev, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine the block.", success)

			if !block.Validate() {
				t.Fatalf("\t%s\tTest 0:\tShould validate right after sealing.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould validate right after sealing.", success)

			if err := block.VerifyHash(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould store the sealing hash: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould store the sealing hash.", success)

			if !pow.Solved(block.Hash) {
				t.Fatalf("\t%s\tTest 0:\tShould have a hash below the target.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have a hash below the target.", success)

			got, ok := block.Prev()
			if !ok || !bytes.Equal(got, prev) || block.IsOrigin() {
				t.Fatalf("\t%s\tTest 0:\tShould point at its parent.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould point at its parent.", success)

			exp := signature.Hash(append(append([]byte{}, tx1.ID...), tx2.ID...))
			if !bytes.Equal(block.HashTransactions(), exp) {
				t.Fatalf("\t%s\tTest 0:\tShould hash the transaction ids in order.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hash the transaction ids in order.", success)

			swapped := block
			swapped.Transactions = []database.Transaction{tx2, tx1}
			if bytes.Equal(swapped.HashTransactions(), block.HashTransactions()) {
				t.Fatalf("\t%s\tTest 0:\tShould treat the transaction order as significant.", failed)
			}
			if swapped.VerifyHash() == nil {
				t.Fatalf("\t%s\tTest 0:\tShould break the seal when the order changes.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould treat the transaction order as significant.", success)

			tampered := block
			tampered.Nonce++
			if tampered.VerifyHash() == nil {
				t.Fatalf("\t%s\tTest 0:\tShould detect a changed nonce.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould detect a changed nonce.", success)
		}

		t.Logf("\tTest 1:\tWhen mining an origin block.")
		{
			tx, err := database.NewCoinbaseTx("A", "")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct a coinbase: %v", failed, err)
			}

			block, err := database.NewBlock([]database.Transaction{tx}, nil, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine the block: %v", failed, err)
			}

			if !block.IsOrigin() || len(block.PrevBlockHash) != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould have no parent.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould have no parent.", success)

			if !block.Validate() {
				t.Fatalf("\t%s\tTest 1:\tShould validate right after sealing.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould validate right after sealing.", success)
		}
	}
}
