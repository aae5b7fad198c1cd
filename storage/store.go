// Package storage provides the snapshot-shaped key-value views the interop
// layer executes against: an in-memory store for tests and one-shot runs, and
// a LevelDB-backed store for persistent state.
package storage

// Iterator walks key-value pairs in ascending byte order of keys. Key and
// Value are only valid until the next call to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Snapshot is the storage view one execution works against. Implementations
// need not be safe for concurrent use; an engine owns its snapshot for the
// duration of a run.
type Snapshot interface {
	// Get retrieves a value by key. Returns (nil, false, nil) if not found.
	Get(key []byte) ([]byte, bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	// Seek returns an iterator positioned before the first key with the
	// given prefix, yielding matching keys in ascending order.
	Seek(prefix []byte) Iterator
	Close() error
}
