package types

import (
	"bytes"
	"time"

	"safetx/codec"
)

// Operation is the call type a wallet transaction performs, matching the
// wallet contract's operation enum.
type Operation uint8

const (
	OperationCall Operation = iota
	OperationDelegateCall
	OperationCreate
)

// Valid reports whether the operation is one the wallet contract knows.
func (op Operation) Valid() bool {
	return op <= OperationCreate
}

// TxParams are the immutable parameters of a proposed wallet transaction.
// Once the first confirmation creates the transaction record they may never
// change for its (wallet, nonce) key.
type TxParams struct {
	To        codec.Address `json:"to"`
	Value     *Wei          `json:"value"`
	Data      HexData       `json:"data"`
	Operation Operation     `json:"operation"`
}

// Equal reports whether two parameter sets describe the same proposal.
func (p TxParams) Equal(other TxParams) bool {
	if p.To != other.To || p.Operation != other.Operation {
		return false
	}
	if !bytes.Equal(p.Data, other.Data) {
		return false
	}
	switch {
	case p.Value == nil && other.Value == nil:
		return true
	case p.Value == nil || other.Value == nil:
		return false
	}
	return p.Value.Eq(&other.Value.Int)
}

// Transaction is a proposed action on a multisig wallet, uniquely identified
// by (wallet, nonce).
type Transaction struct {
	Wallet    codec.Address `json:"wallet"`
	To        codec.Address `json:"to"`
	Value     *Wei          `json:"value"`
	Data      HexData       `json:"data"`
	Operation Operation     `json:"operation"`
	Nonce     uint64        `json:"nonce"`
	CreatedAt time.Time     `json:"created_at"`
}

// Params extracts the immutable parameter set of the transaction.
func (tx *Transaction) Params() TxParams {
	return TxParams{To: tx.To, Value: tx.Value, Data: tx.Data, Operation: tx.Operation}
}

// Confirmation is evidence that one owner approved a specific transaction.
type Confirmation struct {
	Wallet                  codec.Address `json:"wallet"`
	Nonce                   uint64        `json:"nonce"`
	Owner                   codec.Address `json:"owner"`
	ContractTransactionHash codec.Digest  `json:"contract_transaction_hash"`
	CreatedAt               time.Time     `json:"created_at"`
}

// TransactionView is the client-facing aggregate: the transaction plus its
// confirmations ordered by creation time, most recent first.
type TransactionView struct {
	Transaction
	Confirmations []Confirmation `json:"confirmations"`
}

// ConfirmationRequest is the raw submission body for
// POST /transactions/{wallet}. Address and digest fields stay untyped here;
// the validator parses each one into its canonical form before anything is
// persisted.
type ConfirmationRequest struct {
	Sender                  string  `json:"sender"`
	To                      string  `json:"to"`
	Value                   *Wei    `json:"value"`
	Data                    HexData `json:"data"`
	Operation               uint8   `json:"operation"`
	Nonce                   uint64  `json:"nonce"`
	ContractTransactionHash string  `json:"contract_transaction_hash"`
}
