package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetx/codec"
	"safetx/db"
	"safetx/jsonx"
	"safetx/oracle"
	"safetx/service"
	"safetx/store"
	"safetx/types"
	"safetx/validator"
)

type fixture struct {
	handler http.Handler
	oracle  *oracle.MemoryOracle
	wallet  codec.Address
	owners  []codec.Address
	params  types.TxParams
	nonce   uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	wallet := mustAddr(t, strings.Repeat("11", 20))
	owners := []codec.Address{
		mustAddr(t, strings.Repeat("a1", 20)),
		mustAddr(t, strings.Repeat("a2", 20)),
		mustAddr(t, strings.Repeat("a3", 20)),
	}

	mo := oracle.NewMemoryOracle()
	mo.RegisterWallet(wallet)

	hs, err := store.NewGenericHistoryStore(db.NewMemoryProvider())
	require.NoError(t, err)
	t.Cleanup(hs.MustClose)

	history := service.NewHistoryService(validator.NewConfirmationValidator(mo), hs)
	server := NewAPIServer(history, "127.0.0.1:0", "test")

	return &fixture{
		handler: server.Handler(),
		oracle:  mo,
		wallet:  wallet,
		owners:  owners,
		params: types.TxParams{
			To:        owners[0],
			Value:     types.NewWei(50000000000000000),
			Data:      types.HexData{},
			Operation: types.OperationCall,
		},
		nonce: 3,
	}
}

func mustAddr(t *testing.T, body string) codec.Address {
	t.Helper()
	a, err := codec.NormalizeAddress("0x" + body)
	require.NoError(t, err)
	return a
}

func (f *fixture) requestBody(t *testing.T, owner codec.Address, digest codec.Digest) []byte {
	t.Helper()
	body, err := jsonx.Marshal(map[string]interface{}{
		"sender":                    owner.String(),
		"to":                        f.params.To.String(),
		"value":                     f.params.Value.String(),
		"data":                      "0x",
		"operation":                 uint8(f.params.Operation),
		"nonce":                     f.nonce,
		"contract_transaction_hash": digest.String(),
	})
	require.NoError(t, err)
	return body
}

func (f *fixture) post(t *testing.T, wallet string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transactions/"+wallet, bytes.NewReader(body))
	req.RemoteAddr = "10.0.0.1:4000"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(t *testing.T, wallet string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/transactions/"+wallet, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAbout(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "safetx", payload["name"])
}

func TestMultisigTransactionCreationFlow(t *testing.T) {
	f := newFixture(t)

	for i, owner := range f.owners {
		digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, owner)
		rec := f.post(t, f.wallet.String(), f.requestBody(t, owner, digest))
		require.Equal(t, http.StatusCreated, rec.Code, "owner %d", i)
		time.Sleep(2 * time.Millisecond)
	}

	rec := f.get(t, f.wallet.String())
	require.Equal(t, http.StatusOK, rec.Code)

	var views []types.TransactionView
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	require.Len(t, views[0].Confirmations, 3)

	// confirmations are sorted by creation date DESC
	assert.Equal(t, f.owners[0], views[0].Confirmations[2].Owner)
	assert.Equal(t, f.owners[2], views[0].Confirmations[0].Owner)
}

func TestSubmitTruncatedDigest(t *testing.T) {
	f := newFixture(t)

	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	raw := digest.String()
	truncated := codec.Digest(raw[:len(raw)-2])

	rec := f.post(t, f.wallet.String(), f.requestBody(t, f.owners[0], truncated))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing was created
	assert.Equal(t, http.StatusNotFound, f.get(t, f.wallet.String()).Code)
}

func TestSubmitWrongWalletAddress(t *testing.T) {
	f := newFixture(t)
	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	body := f.requestBody(t, f.owners[0], digest)

	// wrong length
	rec := f.post(t, f.wallet.String()[:len(f.wallet)-5], body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// not base16
	raw := f.wallet.String()
	rec = f.post(t, raw[:len(raw)-4]+"test", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// well-formed but not a deployed wallet
	unknown := mustAddr(t, strings.Repeat("99", 20))
	rec = f.post(t, unknown.String(), body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// no rows created for the real wallet either
	assert.Equal(t, http.StatusNotFound, f.get(t, f.wallet.String()).Code)
}

func TestSubmitUnapprovedSender(t *testing.T) {
	f := newFixture(t)

	// owner 0 approved; owner 1 claims the same digest
	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	rec := f.post(t, f.wallet.String(), f.requestBody(t, f.owners[1], digest))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, f.get(t, f.wallet.String()).Code)
}

func TestSubmitDuplicateIsIdempotent(t *testing.T) {
	f := newFixture(t)

	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	body := f.requestBody(t, f.owners[0], digest)

	rec := f.post(t, f.wallet.String(), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.post(t, f.wallet.String(), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result service.SubmissionResult
	require.NoError(t, jsonx.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, service.SubmissionDuplicate, result.Status)
	assert.Len(t, result.Confirmations, 1)
}

func TestSubmitInconsistentTransaction(t *testing.T) {
	f := newFixture(t)

	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	rec := f.post(t, f.wallet.String(), f.requestBody(t, f.owners[0], digest))
	require.Equal(t, http.StatusCreated, rec.Code)

	// same nonce, different value
	conflicting := *f
	conflicting.params.Value = types.NewWei(1)
	digest = f.oracle.ApproveParams(f.wallet, conflicting.params, f.nonce, f.owners[1])
	rec = f.post(t, f.wallet.String(), conflicting.requestBody(t, f.owners[1], digest))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetUnknownWallet(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, f.wallet.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMalformedWallet(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "0x1234")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSubmitGarbageBody(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, f.wallet.String(), []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOracleDownReturnsServiceUnavailable(t *testing.T) {
	f := newFixture(t)

	digest := f.oracle.ApproveParams(f.wallet, f.params, f.nonce, f.owners[0])
	body := f.requestBody(t, f.owners[0], digest)
	f.oracle.SetUnavailable(true)

	rec := f.post(t, f.wallet.String(), body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	assert.True(t, limiter.Allow("ip"))
	assert.True(t, limiter.Allow("ip"))
	assert.False(t, limiter.Allow("ip"))
	assert.True(t, limiter.Allow("other"))
}
