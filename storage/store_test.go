package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseSnapshot runs the shared contract checks against any Snapshot
// implementation.
func exerciseSnapshot(t *testing.T, s Snapshot) {
	t.Helper()

	_, found, err := s.Get([]byte("missing"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put([]byte("a/1"), []byte("v1")))
	require.NoError(t, s.Put([]byte("a/2"), []byte("v2")))
	require.NoError(t, s.Put([]byte("b/1"), []byte("v3")))

	v, found, err := s.Get([]byte("a/2"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("v2"), v)

	// Overwrite.
	require.NoError(t, s.Put([]byte("a/2"), []byte("v2b")))
	v, _, _ = s.Get([]byte("a/2"))
	assert.Equal(t, []byte("v2b"), v)

	// Prefix iteration in key order.
	it := s.Seek([]byte("a/"))
	var keys, values []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}
	it.Release()
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"a/1", "a/2"}, keys)
	assert.Equal(t, []string{"v1", "v2b"}, values)

	// Delete is idempotent.
	require.NoError(t, s.Delete([]byte("a/1")))
	require.NoError(t, s.Delete([]byte("a/1")))
	_, found, err = s.Get([]byte("a/1"))
	require.NoError(t, err)
	assert.False(t, found)

	it = s.Seek([]byte("a/"))
	count := 0
	for it.Next() {
		count++
	}
	it.Release()
	assert.Equal(t, 1, count)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseSnapshot(t, s)
	assert.Equal(t, 2, s.Len())
	assert.NoError(t, s.Close())
}

func TestMemoryStoreIsolatesValues(t *testing.T) {
	s := NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.Put([]byte("k"), v))
	v[0] = 'x' // caller mutation after Put must not leak in

	got, found, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y' // nor mutation of the returned copy
	again, _, _ := s.Get([]byte("k"))
	assert.Equal(t, []byte("abc"), again)
}

func TestLevelDBStoreInMemory(t *testing.T) {
	s, err := NewLevelDBStore("")
	require.NoError(t, err)
	defer s.Close()
	exerciseSnapshot(t, s)
}

func TestLevelDBStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLevelDBStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put([]byte("persist"), []byte("yes")))
	require.NoError(t, s.Close())

	// Reopen and read back.
	s, err = NewLevelDBStore(dir)
	require.NoError(t, err)
	defer s.Close()
	v, found, err := s.Get([]byte("persist"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("yes"), v)
}
