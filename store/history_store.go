package store

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"safetx/codec"
	"safetx/db"
	"safetx/errors"
	"safetx/jsonx"
	"safetx/logx"
	"safetx/types"
)

// HistoryStore owns the durable mapping from (wallet, nonce) to a
// transaction record and from (transaction, owner) to confirmation records.
// It is the sole writer of both and enforces their uniqueness invariants.
type HistoryStore interface {
	// FindOrCreateTransaction returns the transaction for (wallet, nonce),
	// creating it with the given parameters on first sight. An existing
	// record whose parameters differ fails with inconsistent_transaction;
	// stored parameters are never overwritten.
	FindOrCreateTransaction(wallet codec.Address, nonce uint64, params types.TxParams) (*types.Transaction, bool, error)

	// AddConfirmation appends an owner's confirmation to a transaction.
	// A second confirmation by the same owner fails with
	// duplicate_confirmation.
	AddConfirmation(tx *types.Transaction, owner codec.Address, digest codec.Digest) (*types.Confirmation, error)

	// ListTransactions returns all transactions for a wallet in ascending
	// nonce order, or wallet_unknown when none are recorded.
	ListTransactions(wallet codec.Address) ([]*types.Transaction, error)

	// ListConfirmations returns a transaction's confirmations ordered by
	// creation time, most recent first.
	ListConfirmations(tx *types.Transaction) ([]types.Confirmation, error)

	MustClose()
}

// GenericHistoryStore implements HistoryStore on any IterableProvider.
// Uniqueness races between concurrent writers are settled by the provider's
// atomic PutIfAbsent, then translated into the service error taxonomy.
type GenericHistoryStore struct {
	dbProvider db.IterableProvider

	// tie-breaker for confirmations stored in the same nanosecond
	seq atomic.Uint64
}

// confirmationRecord is the stored shape of a confirmation. The sequence
// number never leaves the store; it only disambiguates equal timestamps.
type confirmationRecord struct {
	types.Confirmation
	Seq uint64 `json:"seq"`
}

func NewGenericHistoryStore(dbProvider db.IterableProvider) (*GenericHistoryStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericHistoryStore{dbProvider: dbProvider}, nil
}

func (s *GenericHistoryStore) FindOrCreateTransaction(wallet codec.Address, nonce uint64, params types.TxParams) (*types.Transaction, bool, error) {
	key := txKey(wallet, nonce)

	existing, err := s.getTransaction(key)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if !existing.Params().Equal(params) {
			return nil, false, errors.NewError(errors.ErrCodeInconsistentTransaction, errors.ErrMsgInconsistentTransaction)
		}
		return existing, false, nil
	}

	tx := &types.Transaction{
		Wallet:    wallet,
		To:        params.To,
		Value:     params.Value,
		Data:      params.Data,
		Operation: params.Operation,
		Nonce:     nonce,
		CreatedAt: time.Now().UTC(),
	}

	txData, err := jsonx.Marshal(tx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	created, err := s.dbProvider.PutIfAbsent(key, txData)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store transaction: %w", err)
	}
	if created {
		logx.Info("HISTORY_STORE", "created transaction wallet=", wallet, " nonce=", nonce)
		return tx, true, nil
	}

	// lost the creation race; the winner's record is authoritative
	existing, err = s.getTransaction(key)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("transaction vanished after creation race: %s", key)
	}
	if !existing.Params().Equal(params) {
		return nil, false, errors.NewError(errors.ErrCodeInconsistentTransaction, errors.ErrMsgInconsistentTransaction)
	}
	return existing, false, nil
}

func (s *GenericHistoryStore) AddConfirmation(tx *types.Transaction, owner codec.Address, digest codec.Digest) (*types.Confirmation, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction cannot be nil")
	}

	record := confirmationRecord{
		Confirmation: types.Confirmation{
			Wallet:                  tx.Wallet,
			Nonce:                   tx.Nonce,
			Owner:                   owner,
			ContractTransactionHash: digest,
			CreatedAt:               time.Now().UTC(),
		},
		Seq: s.seq.Add(1),
	}

	confData, err := jsonx.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	created, err := s.dbProvider.PutIfAbsent(confirmationKey(tx.Wallet, tx.Nonce, owner), confData)
	if err != nil {
		return nil, fmt.Errorf("failed to store confirmation: %w", err)
	}
	if !created {
		return nil, errors.NewError(errors.ErrCodeDuplicateConfirmation, errors.ErrMsgDuplicateConfirmation)
	}

	logx.Info("HISTORY_STORE", "stored confirmation wallet=", tx.Wallet, " nonce=", tx.Nonce, " owner=", owner)
	return &record.Confirmation, nil
}

func (s *GenericHistoryStore) ListTransactions(wallet codec.Address) ([]*types.Transaction, error) {
	var txs []*types.Transaction

	err := s.dbProvider.IteratePrefix(txWalletPrefix(wallet), func(key, value []byte) bool {
		var tx types.Transaction
		if err := jsonx.Unmarshal(value, &tx); err != nil {
			logx.Error("HISTORY_STORE", "failed to unmarshal transaction", "error", err)
			return true
		}
		txs = append(txs, &tx)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	if len(txs) == 0 {
		return nil, errors.NewError(errors.ErrCodeWalletUnknown, errors.ErrMsgWalletUnknown)
	}

	return txs, nil
}

func (s *GenericHistoryStore) ListConfirmations(tx *types.Transaction) ([]types.Confirmation, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction cannot be nil")
	}

	var records []confirmationRecord
	err := s.dbProvider.IteratePrefix(confirmationPrefix(tx.Wallet, tx.Nonce), func(key, value []byte) bool {
		var record confirmationRecord
		if err := jsonx.Unmarshal(value, &record); err != nil {
			logx.Error("HISTORY_STORE", "failed to unmarshal confirmation", "error", err)
			return true
		}
		records = append(records, record)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate confirmations: %w", err)
	}

	// most recent first; this ordering is part of the read contract
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Seq > records[j].Seq
	})

	confirmations := make([]types.Confirmation, 0, len(records))
	for _, record := range records {
		confirmations = append(confirmations, record.Confirmation)
	}
	return confirmations, nil
}

func (s *GenericHistoryStore) MustClose() {
	if err := s.dbProvider.Close(); err != nil {
		logx.Error("HISTORY_STORE", "Failed to close provider")
	}
}

func (s *GenericHistoryStore) getTransaction(key []byte) (*types.Transaction, error) {
	data, err := s.dbProvider.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var tx types.Transaction
	if err := jsonx.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

var _ HistoryStore = (*GenericHistoryStore)(nil)
