// Package service orchestrates validation and aggregation: it resolves the
// owning transaction for each validated confirmation, appends the
// confirmation, and assembles the client-facing read views.
package service

import (
	"context"

	"safetx/codec"
	"safetx/errors"
	"safetx/logx"
	"safetx/monitoring"
	"safetx/store"
	"safetx/types"
	"safetx/validator"
)

// SubmissionStatus tells a caller what their submission did.
type SubmissionStatus string

const (
	// SubmissionCreated means the confirmation was the first for its
	// (wallet, nonce) and created the transaction record
	SubmissionCreated SubmissionStatus = "created"
	// SubmissionConfirmed means the confirmation was appended to an
	// existing transaction
	SubmissionConfirmed SubmissionStatus = "confirmed"
	// SubmissionDuplicate means the same owner already confirmed this
	// transaction; nothing was written
	SubmissionDuplicate SubmissionStatus = "duplicate"
)

// SubmissionResult is the persisted aggregate returned after a submission.
type SubmissionResult struct {
	Status        SubmissionStatus     `json:"status"`
	Transaction   *types.Transaction   `json:"transaction"`
	Confirmations []types.Confirmation `json:"confirmations"`
}

type HistoryService struct {
	validator *validator.ConfirmationValidator
	store     store.HistoryStore
}

func NewHistoryService(v *validator.ConfirmationValidator, s store.HistoryStore) *HistoryService {
	return &HistoryService{validator: v, store: s}
}

// Submit validates a confirmation candidate, locates or creates its
// transaction, and attaches the confirmation. A resubmission by the same
// owner with identical parameters is idempotent and reported as
// SubmissionDuplicate, not failed. Validation performs no writes, so a
// rejected submission leaves the store untouched.
func (s *HistoryService) Submit(ctx context.Context, walletRaw string, req *types.ConfirmationRequest) (*SubmissionResult, error) {
	monitoring.IncreaseSubmissionCount()

	validated, err := s.validator.Validate(ctx, walletRaw, req)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	tx, created, err := s.store.FindOrCreateTransaction(validated.Wallet, validated.Nonce, validated.Params)
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	status := SubmissionConfirmed
	if created {
		status = SubmissionCreated
		monitoring.IncreaseTransactionsCreated()
	}

	_, err = s.store.AddConfirmation(tx, validated.Sender, validated.Digest)
	switch {
	case err == nil:
		monitoring.IncreaseConfirmationsStored()
	case errors.IsCode(err, errors.ErrCodeDuplicateConfirmation):
		// idempotent resubmission; a conflicting-parameter resubmission was
		// already rejected as inconsistent_transaction above
		monitoring.IncreaseDuplicateSubmissions()
		logx.Info("HISTORY", "duplicate confirmation wallet=", validated.Wallet, " nonce=", validated.Nonce, " owner=", validated.Sender)
		status = SubmissionDuplicate
	default:
		return nil, err
	}

	confirmations, err := s.store.ListConfirmations(tx)
	if err != nil {
		return nil, err
	}

	return &SubmissionResult{
		Status:        status,
		Transaction:   tx,
		Confirmations: confirmations,
	}, nil
}

// WalletTransactions assembles the read-side view: every transaction
// recorded for the wallet in ascending nonce order, each carrying its
// confirmations most recent first. A wallet with no history fails with
// wallet_unknown; a transaction without confirmations is a normal result
// with an empty list.
func (s *HistoryService) WalletTransactions(ctx context.Context, walletRaw string) ([]types.TransactionView, error) {
	wallet, err := codec.NormalizeAddress(walletRaw)
	if err != nil {
		return nil, errors.NewError(errors.ErrCodeUnprocessableWallet, errors.ErrMsgUnprocessableWallet)
	}

	txs, err := s.store.ListTransactions(wallet)
	if err != nil {
		return nil, err
	}

	views := make([]types.TransactionView, 0, len(txs))
	for _, tx := range txs {
		confirmations, err := s.store.ListConfirmations(tx)
		if err != nil {
			return nil, err
		}
		if confirmations == nil {
			confirmations = []types.Confirmation{}
		}
		views = append(views, types.TransactionView{
			Transaction:   *tx,
			Confirmations: confirmations,
		})
	}
	return views, nil
}

func (s *HistoryService) countRejection(err error) {
	switch errors.CodeOf(err) {
	case errors.ErrCodeMalformedAddress, errors.ErrCodeInvalidDigest, errors.ErrCodeInvalidValue, errors.ErrCodeInvalidOperation, errors.ErrCodeInvalidRequest:
		monitoring.IncreaseRejectedCount(monitoring.RejectedMalformedInput)
	case errors.ErrCodeUnprocessableWallet:
		monitoring.IncreaseRejectedCount(monitoring.RejectedUnprocessable)
	case errors.ErrCodeDigestMismatch:
		monitoring.IncreaseRejectedCount(monitoring.RejectedDigestMismatch)
	case errors.ErrCodeNotApproved:
		monitoring.IncreaseRejectedCount(monitoring.RejectedNotApproved)
	case errors.ErrCodeInconsistentTransaction:
		monitoring.IncreaseRejectedCount(monitoring.RejectedInconsistent)
	case errors.ErrCodeOracleUnavailable:
		monitoring.IncreaseOracleFailureCount()
	default:
		monitoring.IncreaseRejectedCount(monitoring.RejectedUnknown)
	}
}
