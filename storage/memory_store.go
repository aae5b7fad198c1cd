package storage

import (
	"bytes"
	"sort"
)

// MemoryStore is a Snapshot over a plain map. Iteration order is made
// deterministic by sorting keys at Seek time.
type MemoryStore struct {
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory snapshot.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key []byte) ([]byte, bool, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStore) Put(key []byte, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

func (m *MemoryStore) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

func (m *MemoryStore) Seek(prefix []byte) Iterator {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memoryIterator{store: m, keys: keys, pos: -1}
}

func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored pairs.
func (m *MemoryStore) Len() int { return len(m.data) }

type memoryIterator struct {
	store *MemoryStore
	keys  []string
	pos   int
}

func (it *memoryIterator) Next() bool {
	// Skip keys deleted since the iterator was created.
	for it.pos+1 < len(it.keys) {
		it.pos++
		if _, ok := it.store.data[it.keys[it.pos]]; ok {
			return true
		}
	}
	it.pos = len(it.keys)
	return false
}

func (it *memoryIterator) Key() []byte {
	return []byte(it.keys[it.pos])
}

func (it *memoryIterator) Value() []byte {
	return it.store.data[it.keys[it.pos]]
}

func (it *memoryIterator) Release()     {}
func (it *memoryIterator) Error() error { return nil }
