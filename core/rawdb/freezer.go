package rawdb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eth2030/receiptcodec/core/types"
	"github.com/eth2030/receiptcodec/log"
)

// ReadAncientHead returns the number of blocks whose receipts were moved to
// the ancient table. A missing marker reads as zero.
func ReadAncientHead(db KeyValueReader) (uint64, error) {
	data, err := db.Get(ancientHeadKey)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: ancient head marker has %d bytes", ErrAncientCorrupted, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// FreezeReceipts moves the receipts of a canonical block from the key-value
// store into the ancient table. Blocks must be frozen in order, starting at
// the table head. The key-value copy is only deleted once the item is in the
// table.
//
// The table is indexed by number alone, so each item is stored as
// hash || receipts RLP and lookups compare the hash.
func FreezeReceipts(db Database, table *AncientTable, number uint64, hash types.Hash) error {
	data, err := ReadRawReceipts(db, number, hash)
	if err != nil {
		return fmt.Errorf("rawdb: freeze block %d: %w", number, err)
	}
	item := make([]byte, 0, types.HashLength+len(data))
	item = append(append(item, hash[:]...), data...)
	if err := table.Append(number, item); err != nil {
		return err
	}
	batch := db.NewBatch()
	if err := DeleteReceipts(batch, number, hash); err != nil {
		return err
	}
	if err := batch.Put(ancientHeadKey, encodeBlockNumber(number+1)); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	log.Module("rawdb").Debug("Froze block receipts", "number", number, "hash", hash, "size", len(data))
	return nil
}

// readAncientItem retrieves frozen item number and splits it into the block
// hash and the encoded receipts.
func readAncientItem(table *AncientTable, number uint64) (types.Hash, []byte, error) {
	item, err := table.Retrieve(number)
	if err != nil {
		return types.Hash{}, nil, err
	}
	if len(item) < types.HashLength {
		return types.Hash{}, nil, fmt.Errorf("%w: item %d has %d bytes, no block hash", ErrAncientCorrupted, number, len(item))
	}
	return types.BytesToHash(item[:types.HashLength]), item[types.HashLength:], nil
}

// HasAncientReceipts reports whether the ancient table holds the receipts
// of the block with the given number and hash.
func HasAncientReceipts(table *AncientTable, number uint64, hash types.Hash) bool {
	stored, _, err := readAncientItem(table, number)
	return err == nil && stored == hash
}

// ReadAncientReceipts retrieves and decodes frozen receipts. A block frozen
// at the same height under another hash reads as ErrNotFound.
func ReadAncientReceipts(table *AncientTable, number uint64, hash types.Hash) (types.Receipts, error) {
	stored, data, err := readAncientItem(table, number)
	if err != nil {
		return nil, err
	}
	if stored != hash {
		return nil, fmt.Errorf("%w: ancient block %d is %s", ErrNotFound, number, stored.Hex())
	}
	receipts, err := codec.DecodeReceipts(data)
	if err != nil {
		return nil, fmt.Errorf("rawdb: decode ancient receipts of block %d: %w", number, err)
	}
	return receipts, nil
}

// ReadReceiptsAnywhere looks up receipts in the key-value store first and
// falls back to the ancient table. table may be nil.
func ReadReceiptsAnywhere(db KeyValueReader, table *AncientTable, number uint64, hash types.Hash) (types.Receipts, error) {
	receipts, err := ReadReceipts(db, number, hash)
	if !errors.Is(err, ErrNotFound) || table == nil {
		return receipts, err
	}
	if number < table.Tail() || number >= table.Head() {
		return nil, err
	}
	return ReadAncientReceipts(table, number, hash)
}
