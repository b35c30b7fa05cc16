package oracle

import (
	"context"
	"sync"

	"safetx/codec"
	"safetx/errors"
	"safetx/types"
)

// MemoryOracle is a deterministic in-memory Oracle for tests and dev mode.
// Wallets and approvals are registered explicitly; digest derivation uses
// the same hashing as the production client.
type MemoryOracle struct {
	mu          sync.RWMutex
	wallets     map[codec.Address]bool
	approvals   map[string]bool
	unavailable bool
}

func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		wallets:   make(map[codec.Address]bool),
		approvals: make(map[string]bool),
	}
}

// RegisterWallet marks wallet as deployed.
func (o *MemoryOracle) RegisterWallet(wallet codec.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.wallets[wallet] = true
}

// Approve records an on-chain approval of digest by owner.
func (o *MemoryOracle) Approve(digest codec.Digest, owner codec.Address) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.approvals[approvalKey(digest, owner)] = true
}

// ApproveParams derives the digest for the parameter tuple, records the
// approval, and returns the digest so callers can echo it in a request.
func (o *MemoryOracle) ApproveParams(wallet codec.Address, params types.TxParams, nonce uint64, owner codec.Address) codec.Digest {
	digest := transactionDigest(wallet, params, nonce)
	o.Approve(digest, owner)
	return digest
}

// SetUnavailable makes every subsequent call fail with oracle_unavailable.
func (o *MemoryOracle) SetUnavailable(unavailable bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unavailable = unavailable
}

func (o *MemoryOracle) ComputeDigest(ctx context.Context, wallet codec.Address, params types.TxParams, nonce uint64) (codec.Digest, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.unavailable {
		return "", errors.NewError(errors.ErrCodeOracleUnavailable, errors.ErrMsgOracleUnavailable)
	}
	return transactionDigest(wallet, params, nonce), nil
}

func (o *MemoryOracle) IsApproved(ctx context.Context, digest codec.Digest, owner codec.Address) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.unavailable {
		return false, errors.NewError(errors.ErrCodeOracleUnavailable, errors.ErrMsgOracleUnavailable)
	}
	return o.approvals[approvalKey(digest, owner)], nil
}

func (o *MemoryOracle) WalletExists(ctx context.Context, wallet codec.Address) (bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.unavailable {
		return false, errors.NewError(errors.ErrCodeOracleUnavailable, errors.ErrMsgOracleUnavailable)
	}
	return o.wallets[wallet], nil
}

func approvalKey(digest codec.Digest, owner codec.Address) string {
	return digest.String() + ":" + owner.String()
}

var _ Oracle = (*MemoryOracle)(nil)
