package database

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Subsidy is the amount paid by a coinbase transaction.
const Subsidy = 10

// CoinbaseIndex is the output index a coinbase input reports as its
// reference. It is never a valid index into a real transaction.
const CoinbaseIndex = -1

// ErrInvalidTransaction is returned when a transaction can't be constructed.
var ErrInvalidTransaction = errors.New("invalid transaction")

// =============================================================================

// OutPoint identifies an output of a prior transaction.
type OutPoint struct {
	TxID  []byte `json:"txid" cbor:"1,keyasint"`
	Index int64  `json:"index" cbor:"2,keyasint"`
}

// Input spends a prior output or, for a coinbase, originates new value.
// A coinbase input has no OutPoint.
type Input struct {
	Prev      *OutPoint `json:"prev,omitempty" cbor:"1,keyasint,omitempty"`
	ScriptSig string    `json:"script_sig" cbor:"2,keyasint"`
}

// NewCoinbaseInput constructs the input of a coinbase transaction. The memo
// is carried as the unlocking credential.
func NewCoinbaseInput(memo string) Input {
	return Input{ScriptSig: memo}
}

// NewSpendInput constructs an input spending output index of transaction txID.
func NewSpendInput(txID []byte, index int64, scriptSig string) Input {
	return Input{
		Prev: &OutPoint{
			TxID:  append([]byte(nil), txID...),
			Index: index,
		},
		ScriptSig: scriptSig,
	}
}

// Ref returns the referenced transaction id and output index. A coinbase
// input reports an empty id and CoinbaseIndex.
func (in Input) Ref() ([]byte, int64) {
	if in.Prev == nil {
		return nil, CoinbaseIndex
	}
	return in.Prev.TxID, in.Prev.Index
}

// Spend returns the output spent by the input. It returns false for a
// coinbase input.
func (in Input) Spend() (OutPoint, bool) {
	txID, idx := in.Ref()
	if len(txID) == 0 && idx == CoinbaseIndex {
		return OutPoint{}, false
	}
	return OutPoint{TxID: txID, Index: idx}, true
}

// UsesKey reports whether the input was unlocked with the address.
func (in Input) UsesKey(address string) bool {
	return in.ScriptSig == address
}

// =============================================================================

// Output holds value locked to an address.
type Output struct {
	Value        uint64 `json:"value" cbor:"1,keyasint"`
	ScriptPubKey string `json:"script_pub_key" cbor:"2,keyasint"`
}

// IsLockedWith reports whether the address can unlock the output.
func (out Output) IsLockedWith(address string) bool {
	return out.ScriptPubKey == address
}

// =============================================================================

// Transaction moves value from inputs to outputs. Its id is the hash of its
// own encoding with the id left empty.
type Transaction struct {
	ID      []byte   `json:"id" cbor:"1,keyasint"`
	Inputs  []Input  `json:"inputs" cbor:"2,keyasint"`
	Outputs []Output `json:"outputs" cbor:"3,keyasint"`
}

// NewTransaction constructs a transaction and sets its id.
func NewTransaction(inputs []Input, outputs []Output) (Transaction, error) {
	if len(inputs) == 0 {
		return Transaction{}, fmt.Errorf("%w: no inputs", ErrInvalidTransaction)
	}
	if len(outputs) == 0 {
		return Transaction{}, fmt.Errorf("%w: no outputs", ErrInvalidTransaction)
	}

	tx := Transaction{
		Inputs:  inputs,
		Outputs: outputs,
	}

	id, err := tx.Hash()
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = id

	return tx, nil
}

// NewCoinbaseTx constructs the transaction paying the subsidy to the
// address. An empty data uses the default reward memo.
func NewCoinbaseTx(to string, data string) (Transaction, error) {
	if data == "" {
		data = fmt.Sprintf("Reward to '%s'", to)
	}

	return NewTransaction(
		[]Input{NewCoinbaseInput(data)},
		[]Output{{Value: Subsidy, ScriptPubKey: to}},
	)
}

// Hash returns the hash of the transaction's encoding computed with the id
// left empty.
func (tx Transaction) Hash() ([]byte, error) {
	tx.ID = nil

	data, err := codec.Encode(tx)
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}

	return signature.Hash(data), nil
}

// clone returns a deep copy of the transaction.
func (tx Transaction) clone() Transaction {
	ntx := Transaction{ID: cloneBytes(tx.ID)}

	if tx.Inputs != nil {
		ntx.Inputs = make([]Input, len(tx.Inputs))
		for i, in := range tx.Inputs {
			ntx.Inputs[i] = in
			if in.Prev != nil {
				ntx.Inputs[i].Prev = &OutPoint{
					TxID:  cloneBytes(in.Prev.TxID),
					Index: in.Prev.Index,
				}
			}
		}
	}

	if tx.Outputs != nil {
		ntx.Outputs = append([]Output{}, tx.Outputs...)
	}

	return ntx
}

// IsCoinbase reports whether the transaction has exactly one input and that
// input references no prior output.
func (tx Transaction) IsCoinbase() bool {
	if len(tx.Inputs) != 1 {
		return false
	}

	txID, idx := tx.Inputs[0].Ref()
	return len(txID) == 0 && idx == CoinbaseIndex
}

// UniqueRewardMemo returns a coinbase memo no other reward shares. Two
// coinbase transactions paying the same address with the same memo have the
// same id.
func UniqueRewardMemo(address string) string {
	return fmt.Sprintf("Reward to '%s' [%s]", address, uuid.NewString())
}

// HexID returns the id in the form used as a map key and for display.
func (tx Transaction) HexID() string {
	return hex.EncodeToString(tx.ID)
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s:%d->%d", signature.Hex(tx.ID), len(tx.Inputs), len(tx.Outputs))
}
