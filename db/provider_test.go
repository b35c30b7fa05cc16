package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openProviders(t *testing.T) map[string]IterableProvider {
	t.Helper()

	dir := t.TempDir()
	ldb, err := NewLevelDBProvider(filepath.Join(dir, "leveldb"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ldb.Close() })

	bdb, err := NewBoltProvider(filepath.Join(dir, "bolt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	return map[string]IterableProvider{
		"memory":  NewMemoryProvider(),
		"leveldb": ldb,
		"bolt":    bdb,
	}
}

func TestProviderPutGetHas(t *testing.T) {
	for name, p := range openProviders(t) {
		t.Run(name, func(t *testing.T) {
			value, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, value)

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))

			value, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), value)

			exists, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, p.Delete([]byte("k1")))
			exists, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestProviderPutIfAbsent(t *testing.T) {
	for name, p := range openProviders(t) {
		t.Run(name, func(t *testing.T) {
			created, err := p.PutIfAbsent([]byte("k"), []byte("first"))
			require.NoError(t, err)
			assert.True(t, created)

			created, err = p.PutIfAbsent([]byte("k"), []byte("second"))
			require.NoError(t, err)
			assert.False(t, created)

			value, err := p.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("first"), value)
		})
	}
}

func TestProviderIteratePrefixOrdered(t *testing.T) {
	for name, p := range openProviders(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put([]byte("tx:b"), []byte("2")))
			require.NoError(t, p.Put([]byte("tx:a"), []byte("1")))
			require.NoError(t, p.Put([]byte("tx:c"), []byte("3")))
			require.NoError(t, p.Put([]byte("other:z"), []byte("x")))

			var keys []string
			err := p.IteratePrefix([]byte("tx:"), func(key, value []byte) bool {
				keys = append(keys, string(key))
				return true
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"tx:a", "tx:b", "tx:c"}, keys)
		})
	}
}

func TestPrefixSuccessor(t *testing.T) {
	assert.Equal(t, []byte("tx;"), prefixSuccessor([]byte("tx:")))
	assert.Equal(t, []byte{0x01}, prefixSuccessor([]byte{0x00}))
	assert.Nil(t, prefixSuccessor([]byte{0xff, 0xff}))
	assert.Equal(t, []byte{0x01}, prefixSuccessor([]byte{0x00, 0xff}))
}
