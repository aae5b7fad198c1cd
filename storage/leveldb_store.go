package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/colorfulnotion/neovm/log"
)

// LevelDBStore wraps LevelDB as a Snapshot for persistent contract state.
// Thread-safe: LevelDB handles its own synchronization.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens or creates a LevelDB database at the given path.
// If path is empty, uses in-memory backing (for tests).
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		memStorage := leveldbstorage.NewMemStorage()
		db, err = leveldb.Open(memStorage, nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	log.Debug(log.StorageMonitoring, "leveldb store opened", "path", path)
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, bool, error) {
	data, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get %x: %w", key, err)
	}
	return data, true, nil
}

func (s *LevelDBStore) Put(key []byte, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *LevelDBStore) Seek(prefix []byte) Iterator {
	return &levelDBIterator{it: s.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying LevelDB instance for advanced operations.
// Use sparingly - prefer the wrapper methods.
func (s *LevelDBStore) DB() *leveldb.DB {
	return s.db
}

type levelDBIterator struct {
	it iterator.Iterator
}

func (l *levelDBIterator) Next() bool    { return l.it.Next() }
func (l *levelDBIterator) Key() []byte   { return l.it.Key() }
func (l *levelDBIterator) Value() []byte { return l.it.Value() }
func (l *levelDBIterator) Release()      { l.it.Release() }
func (l *levelDBIterator) Error() error  { return l.it.Error() }
