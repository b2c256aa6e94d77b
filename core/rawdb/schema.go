package rawdb

import (
	"encoding/binary"

	"github.com/eth2030/receiptcodec/core/types"
)

// Key prefixes for the database schema.
var (
	receiptPrefix = []byte("r") // r + num (8 bytes BE) + hash -> receipts RLP

	// ancientHeadKey tracks the number of blocks moved to the ancient table.
	ancientHeadKey = []byte("AncientReceiptHead")
)

// AncientReceiptTable is the name of the ancient table holding receipts.
const AncientReceiptTable = "receipts"

// receiptKeyLength is the length of a full receipt key.
const receiptKeyLength = 1 + 8 + types.HashLength

// encodeBlockNumber encodes a block number as 8 bytes big-endian.
func encodeBlockNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// receiptKey = receiptPrefix + num + hash
func receiptKey(number uint64, hash types.Hash) []byte {
	key := make([]byte, 0, receiptKeyLength)
	key = append(key, receiptPrefix...)
	key = binary.BigEndian.AppendUint64(key, number)
	return append(key, hash[:]...)
}

// receiptNumberPrefix = receiptPrefix + num
func receiptNumberPrefix(number uint64) []byte {
	return append(append([]byte{}, receiptPrefix...), encodeBlockNumber(number)...)
}

// parseReceiptKey splits a receipt key into its block number and hash.
func parseReceiptKey(key []byte) (uint64, types.Hash, bool) {
	if len(key) != receiptKeyLength || key[0] != receiptPrefix[0] {
		return 0, types.Hash{}, false
	}
	number := binary.BigEndian.Uint64(key[1:9])
	return number, types.BytesToHash(key[9:]), true
}
