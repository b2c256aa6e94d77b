package rawdb

import (
	"errors"

	lru "github.com/hashicorp/golang-lru"

	"github.com/eth2030/receiptcodec/core/types"
)

const receiptCacheSize = 256

// ReceiptStore reads and writes block receipts through a key-value database
// and an optional ancient table, caching decoded lists by block hash. It is
// safe for concurrent use. Returned receipts are shared with the cache and
// must not be modified.
type ReceiptStore struct {
	db      Database
	ancient *AncientTable
	cache   *lru.Cache
}

// NewReceiptStore wraps db. ancient may be nil.
func NewReceiptStore(db Database, ancient *AncientTable) *ReceiptStore {
	cache, _ := lru.New(receiptCacheSize)
	return &ReceiptStore{db: db, ancient: ancient, cache: cache}
}

// DB returns the underlying key-value database.
func (s *ReceiptStore) DB() Database { return s.db }

// Ancient returns the ancient table, or nil.
func (s *ReceiptStore) Ancient() *AncientTable { return s.ancient }

// WriteReceipts stores the receipts of a block.
func (s *ReceiptStore) WriteReceipts(number uint64, hash types.Hash, receipts types.Receipts) error {
	if err := WriteReceipts(s.db, number, hash, receipts); err != nil {
		return err
	}
	s.cache.Add(hash, receipts)
	return nil
}

// ReadReceipts retrieves the receipts of a block from the cache, the
// key-value store or the ancient table, in that order.
func (s *ReceiptStore) ReadReceipts(number uint64, hash types.Hash) (types.Receipts, error) {
	if cached, ok := s.cache.Get(hash); ok {
		return cached.(types.Receipts), nil
	}
	receipts, err := ReadReceiptsAnywhere(s.db, s.ancient, number, hash)
	if err != nil {
		return nil, err
	}
	s.cache.Add(hash, receipts)
	return receipts, nil
}

// HasReceipts reports whether the receipts of a block are stored in either
// backend.
func (s *ReceiptStore) HasReceipts(number uint64, hash types.Hash) bool {
	if s.cache.Contains(hash) || HasReceipts(s.db, number, hash) {
		return true
	}
	return s.ancient != nil && HasAncientReceipts(s.ancient, number, hash)
}

// DeleteReceipts removes the receipts of a block from the key-value store.
// Frozen receipts are only removed by truncating the ancient table.
func (s *ReceiptStore) DeleteReceipts(number uint64, hash types.Hash) error {
	s.cache.Remove(hash)
	return DeleteReceipts(s.db, number, hash)
}

// Freeze moves the receipts of a block into the ancient table.
func (s *ReceiptStore) Freeze(number uint64, hash types.Hash) error {
	if s.ancient == nil {
		return errNoAncient
	}
	return FreezeReceipts(s.db, s.ancient, number, hash)
}

// Close closes both backends.
func (s *ReceiptStore) Close() error {
	s.cache.Purge()
	var err error
	if s.ancient != nil {
		err = s.ancient.Close()
	}
	return errors.Join(err, s.db.Close())
}

var errNoAncient = errors.New("rawdb: no ancient table configured")
