package db

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBProvider implements DatabaseProvider for LevelDB
type LevelDBProvider struct {
	once    sync.Once
	writeMu sync.Mutex
	db      *leveldb.DB
}

// NewLevelDBProvider creates a new LevelDB provider
func NewLevelDBProvider(directory string) (*LevelDBProvider, error) {
	db, err := leveldb.OpenFile(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB: %w", err)
	}

	return &LevelDBProvider{db: db}, nil
}

// Get retrieves a value by key
func (p *LevelDBProvider) Get(key []byte) ([]byte, error) {
	value, err := p.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil // Return nil for not found, consistent with interface
		}
		return nil, err
	}
	return value, nil
}

// Put stores a key-value pair
func (p *LevelDBProvider) Put(key, value []byte) error {
	return p.db.Put(key, value, nil)
}

// PutIfAbsent stores the pair only when the key is new. LevelDB has no
// native conditional write, so the check-then-put runs under a write mutex.
func (p *LevelDBProvider) PutIfAbsent(key, value []byte) (bool, error) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	exists, err := p.db.Has(key, nil)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := p.db.Put(key, value, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Has checks if a key exists
func (p *LevelDBProvider) Has(key []byte) (bool, error) {
	return p.db.Has(key, nil)
}

// Delete removes a key-value pair
func (p *LevelDBProvider) Delete(key []byte) error {
	return p.db.Delete(key, nil)
}

// Close closes the database connection
func (p *LevelDBProvider) Close() error {
	// avoid double close when being used for multiple stores
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

// IteratePrefix iterates over all key-value pairs with the given prefix
func (p *LevelDBProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	iter := p.db.NewIterator(nil, nil)
	defer iter.Release()

	iter.Seek(prefix)

	for iter.Valid() {
		key := iter.Key()

		if len(key) < len(prefix) || !bytes.HasPrefix(key, prefix) {
			break
		}

		// iterator buffers are reused between steps
		keyCopy := append([]byte(nil), key...)
		valueCopy := append([]byte(nil), iter.Value()...)
		if !callback(keyCopy, valueCopy) {
			break
		}

		iter.Next()
	}

	return iter.Error()
}

var _ IterableProvider = (*LevelDBProvider)(nil)
