package oracle

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"safetx/codec"
	"safetx/errors"
	"safetx/logx"
	"safetx/types"
)

// RPCOracle queries wallet contract state over JSON-RPC. Digest derivation
// is a pure function of the parameters, so it is computed locally instead of
// paying a network round-trip.
type RPCOracle struct {
	client *jrpc2.Client
}

// NewRPCOracle connects to a chain gateway speaking the safe.* JSON-RPC
// methods over HTTP.
func NewRPCOracle(endpoint string) *RPCOracle {
	ch := jhttp.NewChannel(endpoint, nil)
	return &RPCOracle{client: jrpc2.NewClient(ch, nil)}
}

type isApprovedParams struct {
	Digest string `json:"digest"`
	Owner  string `json:"owner"`
}

type walletExistsParams struct {
	Wallet string `json:"wallet"`
}

func (o *RPCOracle) ComputeDigest(ctx context.Context, wallet codec.Address, params types.TxParams, nonce uint64) (codec.Digest, error) {
	return transactionDigest(wallet, params, nonce), nil
}

func (o *RPCOracle) IsApproved(ctx context.Context, digest codec.Digest, owner codec.Address) (bool, error) {
	var approved bool
	err := o.client.CallResult(ctx, "safe.isApproved", isApprovedParams{
		Digest: digest.String(),
		Owner:  owner.String(),
	}, &approved)
	if err != nil {
		logx.Error("ORACLE", "isApproved call failed: ", err)
		return false, errors.NewError(errors.ErrCodeOracleUnavailable, errors.ErrMsgOracleUnavailable)
	}
	return approved, nil
}

func (o *RPCOracle) WalletExists(ctx context.Context, wallet codec.Address) (bool, error) {
	var exists bool
	err := o.client.CallResult(ctx, "safe.walletExists", walletExistsParams{
		Wallet: wallet.String(),
	}, &exists)
	if err != nil {
		logx.Error("ORACLE", "walletExists call failed: ", err)
		return false, errors.NewError(errors.ErrCodeOracleUnavailable, errors.ErrMsgOracleUnavailable)
	}
	return exists, nil
}

// Close tears down the underlying RPC client.
func (o *RPCOracle) Close() error {
	return o.client.Close()
}

var _ Oracle = (*RPCOracle)(nil)
