package database

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInsufficientFunds is returned when an address can't cover an amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// UnspentOutput is an output not consumed by any input on the chain.
type UnspentOutput struct {
	TxID   []byte `json:"txid"`
	Index  int64  `json:"index"`
	Output Output `json:"output"`
}

// FindUnspentOutputs returns the outputs locked with the address that no
// input on the chain spends. An output spent by a later transaction of the
// same block is still reported as unspent.
func (bc *Blockchain) FindUnspentOutputs(address string) ([]UnspentOutput, error) {
	utxos, _, err := bc.resolve(address)
	return utxos, err
}

// FindUnspentTransactions returns the transactions holding at least one
// unspent output locked with the address, newest first.
func (bc *Blockchain) FindUnspentTransactions(address string) ([]Transaction, error) {
	_, txs, err := bc.resolve(address)
	return txs, err
}

// FindUTXO returns the unspent outputs locked with the address.
func (bc *Blockchain) FindUTXO(address string) ([]Output, error) {
	utxos, _, err := bc.resolve(address)
	if err != nil {
		return nil, err
	}

	outs := make([]Output, len(utxos))
	for i, u := range utxos {
		outs[i] = u.Output
	}

	return outs, nil
}

// Balance returns the sum of the unspent outputs locked with the address.
func (bc *Blockchain) Balance(address string) (uint64, error) {
	utxos, _, err := bc.resolve(address)
	if err != nil {
		return 0, err
	}

	var balance uint64
	for _, u := range utxos {
		balance += u.Output.Value
	}

	return balance, nil
}

// FindSpendableOutputs collects unspent outputs of the address until their
// sum covers amount. It returns the sum collected, which is less than amount
// when the address can't cover it.
func (bc *Blockchain) FindSpendableOutputs(address string, amount uint64) (uint64, []UnspentOutput, error) {
	utxos, _, err := bc.resolve(address)
	if err != nil {
		return 0, nil, err
	}

	var acc uint64
	var spendable []UnspentOutput
	for _, u := range utxos {
		if acc >= amount {
			break
		}
		acc += u.Output.Value
		spendable = append(spendable, u)
	}

	return acc, spendable, nil
}

// NewTransfer constructs a transaction moving amount from one address to
// another. Any excess of the spent outputs is paid back to the sender.
func (bc *Blockchain) NewTransfer(from string, to string, amount uint64) (Transaction, error) {
	if amount == 0 {
		return Transaction{}, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}

	acc, spendable, err := bc.FindSpendableOutputs(from, amount)
	if err != nil {
		return Transaction{}, err
	}

	if acc < amount {
		return Transaction{}, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, acc, amount)
	}

	inputs := make([]Input, len(spendable))
	for i, u := range spendable {
		inputs[i] = NewSpendInput(u.TxID, u.Index, from)
	}

	outputs := []Output{{Value: amount, ScriptPubKey: to}}
	if acc > amount {
		outputs = append(outputs, Output{Value: acc - amount, ScriptPubKey: from})
	}

	return NewTransaction(inputs, outputs)
}

// =============================================================================

// resolve walks the chain from the tip to the origin. Going backwards, an
// input is always seen before the output it spends. For every transaction
// the outputs are scanned once, then the inputs are scanned once to record
// the outputs they spend. Transactions of a block are visited in block
// order, so a spend of an output created earlier in the same block is
// recorded too late and that output stays unspent.
func (bc *Blockchain) resolve(address string) ([]UnspentOutput, []Transaction, error) {
	var utxos []UnspentOutput
	var txs []Transaction

	// Keyed by hex transaction id, the set of output indexes already spent.
	spent := make(map[string]map[int64]bool)

	iter := bc.Iterator()
	for !iter.Done() {
		block, err := iter.Next()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving unspent outputs: %w", err)
		}

		for _, tx := range block.Transactions {
			txID := tx.HexID()

			var owned bool
			for idx, out := range tx.Outputs {
				if spent[txID][int64(idx)] {
					continue
				}

				if out.IsLockedWith(address) {
					utxos = append(utxos, UnspentOutput{
						TxID:   tx.ID,
						Index:  int64(idx),
						Output: out,
					})
					owned = true
				}
			}

			if owned {
				txs = append(txs, tx)
			}

			if tx.IsCoinbase() {
				continue
			}

			for _, in := range tx.Inputs {
				if !in.UsesKey(address) {
					continue
				}

				op, ok := in.Spend()
				if !ok {
					continue
				}

				refID := hex.EncodeToString(op.TxID)
				if spent[refID] == nil {
					spent[refID] = make(map[int64]bool)
				}
				spent[refID][op.Index] = true
			}
		}
	}

	return utxos, txs, nil
}
