package rawdb

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"sync"
)

var errMemoryClosed = errors.New("memorydb: closed")

// MemoryDB is a map-backed Database for tests and ephemeral tooling. Values
// are copied on the way in and out. It is safe for concurrent use.
type MemoryDB struct {
	mu      sync.RWMutex
	entries map[string][]byte // nil once closed
}

// NewMemoryDB returns an empty in-memory database.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{entries: make(map[string][]byte)}
}

// view runs fn under the read lock, failing if the database is closed.
func (db *MemoryDB) view(fn func(map[string][]byte) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.entries == nil {
		return errMemoryClosed
	}
	return fn(db.entries)
}

// update runs fn under the write lock, failing if the database is closed.
func (db *MemoryDB) update(fn func(map[string][]byte)) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.entries == nil {
		return errMemoryClosed
	}
	fn(db.entries)
	return nil
}

func (db *MemoryDB) Has(key []byte) (found bool, err error) {
	err = db.view(func(m map[string][]byte) error {
		_, found = m[string(key)]
		return nil
	})
	return found, err
}

func (db *MemoryDB) Get(key []byte) (value []byte, err error) {
	err = db.view(func(m map[string][]byte) error {
		v, ok := m[string(key)]
		if !ok {
			return ErrNotFound
		}
		value = bytes.Clone(v)
		return nil
	})
	return value, err
}

func (db *MemoryDB) Put(key, value []byte) error {
	value = bytes.Clone(value)
	return db.update(func(m map[string][]byte) { m[string(key)] = value })
}

func (db *MemoryDB) Delete(key []byte) error {
	return db.update(func(m map[string][]byte) { delete(m, string(key)) })
}

// Close drops the contents. Every later operation fails.
func (db *MemoryDB) Close() error {
	db.mu.Lock()
	db.entries = nil
	db.mu.Unlock()
	return nil
}

// Len returns the number of stored keys; zero once closed.
func (db *MemoryDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

func (db *MemoryDB) NewBatch() Batch {
	return &memBatch{db: db}
}

// NewIterator iterates over a sorted snapshot of the keys starting with
// prefix. Writes after the call are not observed.
func (db *MemoryDB) NewIterator(prefix []byte) Iterator {
	it := &memIterator{pos: -1}
	it.err = db.view(func(m map[string][]byte) error {
		for k, v := range m {
			if strings.HasPrefix(k, string(prefix)) {
				it.keys = append(it.keys, k)
				it.values = append(it.values, v)
			}
		}
		return nil
	})
	it.sort()
	return it
}

// memBatch queues writes as closures applied in order by Write.
type memBatch struct {
	db   *MemoryDB
	ops  []func(map[string][]byte)
	size int
}

func (b *memBatch) Put(key, value []byte) error {
	k, v := string(key), bytes.Clone(value)
	b.ops = append(b.ops, func(m map[string][]byte) { m[k] = v })
	b.size += len(key) + len(value)
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	k := string(key)
	b.ops = append(b.ops, func(m map[string][]byte) { delete(m, k) })
	b.size += len(key)
	return nil
}

func (b *memBatch) ValueSize() int { return b.size }

func (b *memBatch) Write() error {
	return b.db.update(func(m map[string][]byte) {
		for _, op := range b.ops {
			op(m)
		}
	})
}

func (b *memBatch) Reset() {
	b.ops, b.size = b.ops[:0], 0
}

type memIterator struct {
	keys   []string
	values [][]byte
	pos    int
	err    error
}

// sort orders keys and values together by key.
func (it *memIterator) sort() {
	idx := make([]int, len(it.keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return strings.Compare(it.keys[a], it.keys[b]) })
	keys := make([]string, len(idx))
	values := make([][]byte, len(idx))
	for i, j := range idx {
		keys[i], values[i] = it.keys[j], bytes.Clone(it.values[j])
	}
	it.keys, it.values = keys, values
}

func (it *memIterator) Next() bool {
	if it.pos < len(it.keys) {
		it.pos++
	}
	return it.pos < len(it.keys)
}

func (it *memIterator) valid() bool { return it.pos >= 0 && it.pos < len(it.keys) }

func (it *memIterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *memIterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.values[it.pos]
}

func (it *memIterator) Error() error { return it.err }

func (it *memIterator) Release() {
	it.keys, it.values = nil, nil
}
