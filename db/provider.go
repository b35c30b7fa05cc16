package db

// DatabaseProvider abstracts the low-level key-value operations the
// aggregation store is built on, so the service can run against different
// database backends without knowing the implementation details.
type DatabaseProvider interface {
	// Get retrieves a value by key, returning nil when the key is absent
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair, overwriting any existing value
	Put(key, value []byte) error

	// PutIfAbsent stores the pair only when the key does not exist yet and
	// reports whether the write happened. This is the uniqueness primitive
	// that turns concurrent find-then-insert races into a deterministic
	// loser, so it must be atomic in every implementation.
	PutIfAbsent(key, value []byte) (bool, error)

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// Delete removes a key-value pair
	Delete(key []byte) error

	// Close closes the database connection
	Close() error
}

// IterableProvider extends DatabaseProvider with ordered iteration.
type IterableProvider interface {
	DatabaseProvider

	// IteratePrefix visits all pairs whose key starts with prefix, in
	// ascending key order. The callback returns false to stop early.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// prefixSuccessor returns the smallest key greater than every key with the
// given prefix, or nil when no such bound exists.
func prefixSuccessor(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
