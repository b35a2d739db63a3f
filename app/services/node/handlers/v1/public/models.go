package public

import (
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// SendRequest is the payload for moving value between addresses.
type SendRequest struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required,nefield=From"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

// Validate checks the request for errors.
func (sr SendRequest) Validate() error {
	return validate.Check(sr)
}

// MineRequest is the payload for mining a reward block.
type MineRequest struct {
	Address string `json:"address" validate:"required"`
	Data    string `json:"data"`
}

// Validate checks the request for errors.
func (mr MineRequest) Validate() error {
	return validate.Check(mr)
}

// =============================================================================

type input struct {
	Coinbase  bool   `json:"coinbase"`
	TxID      string `json:"txid,omitempty"`
	OutIdx    int64  `json:"out_idx"`
	ScriptSig string `json:"script_sig"`
}

type output struct {
	Value        uint64 `json:"value"`
	ScriptPubKey string `json:"script_pub_key"`
}

type tx struct {
	ID      string   `json:"id"`
	Inputs  []input  `json:"inputs"`
	Outputs []output `json:"outputs"`
}

type block struct {
	Hash         string `json:"hash"`
	PrevHash     string `json:"prev_hash"`
	TimeStamp    uint64 `json:"timestamp"`
	Nonce        uint64 `json:"nonce"`
	Valid        bool   `json:"valid"`
	Transactions []tx   `json:"transactions"`
}

type balance struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type utxo struct {
	TxID         string `json:"txid"`
	Index        int64  `json:"index"`
	Value        uint64 `json:"value"`
	ScriptPubKey string `json:"script_pub_key"`
}

type verification struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// =============================================================================

func toTx(dbTx database.Transaction) tx {
	ins := make([]input, len(dbTx.Inputs))
	for i, in := range dbTx.Inputs {
		txID, idx := in.Ref()

		ins[i] = input{
			Coinbase:  dbTx.IsCoinbase(),
			OutIdx:    idx,
			ScriptSig: in.ScriptSig,
		}
		if len(txID) > 0 {
			ins[i].TxID = signature.Hex(txID)
		}
	}

	outs := make([]output, len(dbTx.Outputs))
	for i, out := range dbTx.Outputs {
		outs[i] = output{
			Value:        out.Value,
			ScriptPubKey: out.ScriptPubKey,
		}
	}

	return tx{
		ID:      signature.Hex(dbTx.ID),
		Inputs:  ins,
		Outputs: outs,
	}
}

func toBlock(dbBlock database.Block) block {
	txs := make([]tx, len(dbBlock.Transactions))
	for i, dbTx := range dbBlock.Transactions {
		txs[i] = toTx(dbTx)
	}

	return block{
		Hash:         signature.Hex(dbBlock.Hash),
		PrevHash:     signature.Hex(dbBlock.PrevBlockHash),
		TimeStamp:    dbBlock.Timestamp,
		Nonce:        dbBlock.Nonce,
		Valid:        dbBlock.Validate(),
		Transactions: txs,
	}
}

func toUTXO(u database.UnspentOutput) utxo {
	return utxo{
		TxID:         signature.Hex(u.TxID),
		Index:        u.Index,
		Value:        u.Output.Value,
		ScriptPubKey: u.Output.ScriptPubKey,
	}
}
