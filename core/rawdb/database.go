// Package rawdb stores encoded receipts in a key-value database and in
// append-only ancient tables.
//
// Keys follow go-ethereum's prefix-based schema: every record kind uses a
// distinct key prefix followed by the block number and block hash.
package rawdb

import "errors"

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("not found")

// KeyValueReader is the read side of a database. Receipt accessors that
// only look records up accept this.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	// Get returns a copy of the value, or ErrNotFound.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter is implemented by databases and batches alike. Deleting
// a missing key is not an error.
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Batch buffers writes until Write applies them in one step.
type Batch interface {
	KeyValueWriter
	// ValueSize is the number of key and value bytes queued.
	ValueSize() int
	Write() error
	Reset()
}

// Iterator walks key/value pairs in ascending key order. The slices
// returned by Key and Value are only valid until the next call to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// Iteratee opens prefix iterators.
type Iteratee interface {
	NewIterator(prefix []byte) Iterator
}

// Database is a receipt key-value backend: MemoryDB in tests, LevelDB on
// disk.
type Database interface {
	KeyValueReader
	KeyValueWriter
	Iteratee
	NewBatch() Batch
	Close() error
}

var (
	_ Database = (*MemoryDB)(nil)
	_ Database = (*LevelDB)(nil)
)
