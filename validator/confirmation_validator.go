// Package validator checks inbound confirmations against canonical digests
// and authoritative on-chain approval state before anything is persisted.
package validator

import (
	"context"

	"safetx/codec"
	"safetx/errors"
	"safetx/logx"
	"safetx/oracle"
	"safetx/types"
)

// ValidatedConfirmation carries the normalized outcome of a successful
// validation, ready for aggregation.
type ValidatedConfirmation struct {
	Wallet codec.Address
	Sender codec.Address
	Params types.TxParams
	Nonce  uint64
	Digest codec.Digest
}

// ConfirmationValidator recomputes the canonical digest for a submitted
// confirmation and verifies the claimed signer actually approved it
// on-chain. It performs no writes; oracle calls are read-only.
type ConfirmationValidator struct {
	oracle oracle.Oracle
}

func NewConfirmationValidator(o oracle.Oracle) *ConfirmationValidator {
	return &ConfirmationValidator{oracle: o}
}

// Validate runs the full check sequence. Error codes separate syntactically
// invalid body fields (400-class) from a wallet path that is well-formed
// but unprocessable (422-class), and both from oracle unavailability.
// Field syntax is checked completely before the first oracle round-trip.
func (v *ConfirmationValidator) Validate(ctx context.Context, walletRaw string, req *types.ConfirmationRequest) (*ValidatedConfirmation, error) {
	// The wallet comes from the URL path; any shape it can be wrong in,
	// including a bad checksum, renders the request unprocessable rather
	// than malformed.
	wallet, err := codec.NormalizeAddress(walletRaw)
	if err != nil {
		return nil, errors.NewError(errors.ErrCodeUnprocessableWallet, errors.ErrMsgUnprocessableWallet)
	}

	sender, err := codec.NormalizeAddress(req.Sender)
	if err != nil {
		return nil, err
	}

	to, err := codec.NormalizeAddress(req.To)
	if err != nil {
		return nil, err
	}

	if req.Value == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidValue, errors.ErrMsgInvalidValue)
	}

	op := types.Operation(req.Operation)
	if !op.Valid() {
		return nil, errors.NewError(errors.ErrCodeInvalidOperation, errors.ErrMsgInvalidOperation)
	}

	suppliedDigest, err := codec.NormalizeDigest(req.ContractTransactionHash)
	if err != nil {
		return nil, err
	}

	data := req.Data
	if data == nil {
		data = types.HexData{}
	}
	params := types.TxParams{To: to, Value: req.Value, Data: data, Operation: op}

	exists, err := v.oracle.WalletExists(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewError(errors.ErrCodeUnprocessableWallet, errors.ErrMsgUnprocessableWallet)
	}

	expectedDigest, err := v.oracle.ComputeDigest(ctx, wallet, params, req.Nonce)
	if err != nil {
		return nil, err
	}
	if expectedDigest != suppliedDigest {
		logx.Warn("VALIDATOR", "digest mismatch wallet=", wallet, " nonce=", req.Nonce)
		return nil, errors.NewError(errors.ErrCodeDigestMismatch, errors.ErrMsgDigestMismatch)
	}

	// the anti-forgery check: the claimed owner must have approved this
	// exact digest on-chain
	approved, err := v.oracle.IsApproved(ctx, expectedDigest, sender)
	if err != nil {
		return nil, err
	}
	if !approved {
		logx.Warn("VALIDATOR", "unapproved confirmation wallet=", wallet, " sender=", sender)
		return nil, errors.NewError(errors.ErrCodeNotApproved, errors.ErrMsgNotApproved)
	}

	return &ValidatedConfirmation{
		Wallet: wallet,
		Sender: sender,
		Params: params,
		Nonce:  req.Nonce,
		Digest: expectedDigest,
	}, nil
}
