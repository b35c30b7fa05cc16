package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetx/codec"
	"safetx/db"
	"safetx/errors"
	"safetx/types"
)

func newTestStore(t *testing.T) *GenericHistoryStore {
	t.Helper()
	s, err := NewGenericHistoryStore(db.NewMemoryProvider())
	require.NoError(t, err)
	return s
}

func addr(t *testing.T, fill string) codec.Address {
	t.Helper()
	a, err := codec.NormalizeAddress("0x" + strings.Repeat(fill, 20))
	require.NoError(t, err)
	return a
}

func digest(t *testing.T, fill string) codec.Digest {
	t.Helper()
	d, err := codec.NormalizeDigest("0x" + strings.Repeat(fill, 32))
	require.NoError(t, err)
	return d
}

func sampleParams(t *testing.T) types.TxParams {
	return types.TxParams{
		To:        addr(t, "aa"),
		Value:     types.NewWei(50000000000000000),
		Data:      types.HexData{},
		Operation: types.OperationCall,
	}
}

func TestFindOrCreateTransaction(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	params := sampleParams(t)

	tx, created, err := s.FindOrCreateTransaction(wallet, 3, params)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, wallet, tx.Wallet)
	assert.Equal(t, uint64(3), tx.Nonce)
	assert.False(t, tx.CreatedAt.IsZero())

	// same parameters resolve to the existing record
	again, created, err := s.FindOrCreateTransaction(wallet, 3, params)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tx.Nonce, again.Nonce)
	assert.True(t, again.Params().Equal(params))
}

func TestFindOrCreateTransactionInconsistent(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	params := sampleParams(t)

	_, _, err := s.FindOrCreateTransaction(wallet, 3, params)
	require.NoError(t, err)

	conflicting := params
	conflicting.Value = types.NewWei(1)
	_, _, err = s.FindOrCreateTransaction(wallet, 3, conflicting)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInconsistentTransaction))

	// the original parameters survive the conflict
	tx, created, err := s.FindOrCreateTransaction(wallet, 3, params)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, tx.Params().Equal(params))
}

func TestAddConfirmationDuplicate(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	owner := addr(t, "02")

	tx, _, err := s.FindOrCreateTransaction(wallet, 3, sampleParams(t))
	require.NoError(t, err)

	conf, err := s.AddConfirmation(tx, owner, digest(t, "ab"))
	require.NoError(t, err)
	assert.Equal(t, owner, conf.Owner)

	_, err = s.AddConfirmation(tx, owner, digest(t, "ab"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateConfirmation))

	confirmations, err := s.ListConfirmations(tx)
	require.NoError(t, err)
	assert.Len(t, confirmations, 1)
}

func TestListConfirmationsOrderedDescending(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")

	tx, _, err := s.FindOrCreateTransaction(wallet, 3, sampleParams(t))
	require.NoError(t, err)

	owners := []codec.Address{addr(t, "0a"), addr(t, "0b"), addr(t, "0c")}
	for _, owner := range owners {
		_, err := s.AddConfirmation(tx, owner, digest(t, "ab"))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	confirmations, err := s.ListConfirmations(tx)
	require.NoError(t, err)
	require.Len(t, confirmations, 3)

	// most recent first, so the first submitter sits at the tail
	assert.Equal(t, owners[2], confirmations[0].Owner)
	assert.Equal(t, owners[1], confirmations[1].Owner)
	assert.Equal(t, owners[0], confirmations[2].Owner)
	assert.False(t, confirmations[0].CreatedAt.Before(confirmations[2].CreatedAt))
}

func TestListTransactionsAscendingNonce(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	params := sampleParams(t)

	for _, nonce := range []uint64{7, 2, 100} {
		_, _, err := s.FindOrCreateTransaction(wallet, nonce, params)
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(wallet)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, uint64(2), txs[0].Nonce)
	assert.Equal(t, uint64(7), txs[1].Nonce)
	assert.Equal(t, uint64(100), txs[2].Nonce)
}

func TestListTransactionsWalletUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ListTransactions(addr(t, "09"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeWalletUnknown))
}

func TestConcurrentFirstConfirmationsCreateOneTransaction(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	params := sampleParams(t)

	owners := make([]codec.Address, 8)
	for i := range owners {
		owners[i] = addr(t, fmt.Sprintf("%02d", i+10))
	}
	confDigest := digest(t, "ab")

	var wg sync.WaitGroup
	results := make(chan bool, len(owners))
	errs := make(chan error, len(owners)*2)
	for i := range owners {
		wg.Add(1)
		go func(owner codec.Address) {
			defer wg.Done()
			tx, created, err := s.FindOrCreateTransaction(wallet, 5, params)
			if err != nil {
				errs <- err
				return
			}
			if _, err := s.AddConfirmation(tx, owner, confDigest); err != nil {
				errs <- err
				return
			}
			results <- created
		}(owners[i])
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	createdCount := 0
	for created := range results {
		if created {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)

	txs, err := s.ListTransactions(wallet)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	confirmations, err := s.ListConfirmations(txs[0])
	require.NoError(t, err)
	assert.Len(t, confirmations, 8)
}

func TestConcurrentSameOwnerSingleConfirmation(t *testing.T) {
	s := newTestStore(t)
	wallet := addr(t, "01")
	owner := addr(t, "02")

	tx, _, err := s.FindOrCreateTransaction(wallet, 3, sampleParams(t))
	require.NoError(t, err)
	confDigest := digest(t, "ab")

	var wg sync.WaitGroup
	duplicates := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddConfirmation(tx, owner, confDigest); err != nil {
				duplicates <- err
			}
		}()
	}
	wg.Wait()
	close(duplicates)

	failed := 0
	for err := range duplicates {
		assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateConfirmation))
		failed++
	}
	assert.Equal(t, 7, failed)

	confirmations, err := s.ListConfirmations(tx)
	require.NoError(t, err)
	assert.Len(t, confirmations, 1)
}
