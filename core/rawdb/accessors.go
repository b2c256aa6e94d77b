package rawdb

import (
	"fmt"

	"github.com/eth2030/receiptcodec/core/types"
	"github.com/eth2030/receiptcodec/metrics"
)

var codec = types.NewReceiptCodec()

// WriteRawReceipts stores an already encoded receipt list.
func WriteRawReceipts(db KeyValueWriter, number uint64, hash types.Hash, data []byte) error {
	if err := db.Put(receiptKey(number, hash), data); err != nil {
		return err
	}
	metrics.ReceiptsWritten.Inc()
	metrics.ReceiptBytesWritten.Add(int64(len(data)))
	return nil
}

// ReadRawReceipts retrieves the encoded receipt list of a block.
func ReadRawReceipts(db KeyValueReader, number uint64, hash types.Hash) ([]byte, error) {
	return db.Get(receiptKey(number, hash))
}

// HasReceipts checks if the receipts of a block exist.
func HasReceipts(db KeyValueReader, number uint64, hash types.Hash) bool {
	ok, _ := db.Has(receiptKey(number, hash))
	return ok
}

// DeleteReceipts removes the receipts of a block.
func DeleteReceipts(db KeyValueWriter, number uint64, hash types.Hash) error {
	return db.Delete(receiptKey(number, hash))
}

// WriteReceipts encodes and stores the receipts of a block.
func WriteReceipts(db KeyValueWriter, number uint64, hash types.Hash, receipts types.Receipts) error {
	data, err := codec.EncodeReceipts(receipts)
	if err != nil {
		return fmt.Errorf("rawdb: encode receipts of block %d: %w", number, err)
	}
	return WriteRawReceipts(db, number, hash, data)
}

// ReadReceipts retrieves and decodes the receipts of a block.
func ReadReceipts(db KeyValueReader, number uint64, hash types.Hash) (types.Receipts, error) {
	data, err := ReadRawReceipts(db, number, hash)
	if err != nil {
		return nil, err
	}
	receipts, err := codec.DecodeReceipts(data)
	if err != nil {
		return nil, fmt.Errorf("rawdb: decode receipts of block %d: %w", number, err)
	}
	metrics.ReceiptsRead.Inc()
	return receipts, nil
}

// IterateReceipts calls fn for every stored receipt list in key order,
// which is ascending block number. Iteration stops at the first error.
func IterateReceipts(db Iteratee, fn func(number uint64, hash types.Hash, data []byte) error) error {
	it := db.NewIterator(receiptPrefix)
	defer it.Release()

	for it.Next() {
		number, hash, ok := parseReceiptKey(it.Key())
		if !ok {
			continue
		}
		if err := fn(number, hash, it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// ReadReceiptHashes returns the hashes of all blocks at the given height
// with stored receipts.
func ReadReceiptHashes(db Iteratee, number uint64) []types.Hash {
	it := db.NewIterator(receiptNumberPrefix(number))
	defer it.Release()

	var hashes []types.Hash
	for it.Next() {
		if _, hash, ok := parseReceiptKey(it.Key()); ok {
			hashes = append(hashes, hash)
		}
	}
	return hashes
}
