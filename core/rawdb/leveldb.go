package rawdb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/eth2030/receiptcodec/log"
)

const (
	// minCache is the minimum block cache size in MiB.
	minCache = 16
	// minHandles is the minimum number of open file handles.
	minHandles = 16
)

// LevelDB is a persistent Database backed by goleveldb.
type LevelDB struct {
	path string
	db   *leveldb.DB
	log  *log.Logger
}

// OpenLevelDB opens (or creates) a LevelDB database at path. A corrupted
// database is recovered once before giving up.
func OpenLevelDB(path string, cache, handles int, readonly bool) (*LevelDB, error) {
	cache = max(cache, minCache)
	handles = max(handles, minHandles)

	logger := log.Module("rawdb").With("path", path)
	options := &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Strict:                 opt.DefaultStrict,
		ReadOnly:               readonly,
	}
	db, err := leveldb.OpenFile(path, options)
	if lerrors.IsCorrupted(err) {
		logger.Warn("Recovering corrupted database", "err", err)
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb: open %s: %w", path, err)
	}
	logger.Info("Opened database", "cache", cache, "handles", handles, "readonly", readonly)
	return &LevelDB{path: path, db: db, log: logger}, nil
}

// NewMemoryLevelDB returns a LevelDB over in-memory storage.
func NewMemoryLevelDB() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db, log: log.Module("rawdb")}, nil
}

// Path returns the directory the database lives in.
func (db *LevelDB) Path() string { return db.path }

func (db *LevelDB) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

func (db *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := db.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (db *LevelDB) Put(key, value []byte) error {
	return db.db.Put(key, value, nil)
}

func (db *LevelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

// NewIterator returns an iterator over all keys with the given prefix.
func (db *LevelDB) NewIterator(prefix []byte) Iterator {
	return db.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// NewBatch creates a write-only batch committed atomically on Write.
func (db *LevelDB) NewBatch() Batch {
	return &levelBatch{db: db.db, b: new(leveldb.Batch)}
}

// Compact flattens the key range [start, limit). Nil bounds are open.
func (db *LevelDB) Compact(start, limit []byte) error {
	return db.db.CompactRange(util.Range{Start: start, Limit: limit})
}

// Stat returns a goleveldb property such as "leveldb.stats".
func (db *LevelDB) Stat(property string) (string, error) {
	return db.db.GetProperty(property)
}

func (db *LevelDB) Close() error {
	if err := db.db.Close(); err != nil {
		return err
	}
	db.log.Debug("Closed database")
	return nil
}

type levelBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *levelBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *levelBatch) ValueSize() int { return b.size }

func (b *levelBatch) Write() error {
	return b.db.Write(b.b, nil)
}

func (b *levelBatch) Reset() {
	b.b.Reset()
	b.size = 0
}
