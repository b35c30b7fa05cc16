// Package oracle exposes the read-only view of on-chain wallet state the
// confirmation pipeline validates against. The core never talks to a chain
// client directly; it depends on this capability set so tests can substitute
// deterministic state.
package oracle

import (
	"context"

	"safetx/codec"
	"safetx/types"
)

// Oracle answers the three questions the validator needs from the wallet
// contract. All methods may fail with the oracle_unavailable service error,
// which callers must keep distinct from a negative answer.
type Oracle interface {
	// ComputeDigest derives the canonical transaction digest for the given
	// parameter tuple, byte-for-byte identical to the contract's own hashing.
	ComputeDigest(ctx context.Context, wallet codec.Address, params types.TxParams, nonce uint64) (codec.Digest, error)

	// IsApproved reports whether the wallet contract currently records an
	// approval of digest by owner.
	IsApproved(ctx context.Context, digest codec.Digest, owner codec.Address) (bool, error)

	// WalletExists reports whether wallet is a deployed, queryable wallet.
	WalletExists(ctx context.Context, wallet codec.Address) (bool, error)
}
