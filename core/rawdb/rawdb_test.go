package rawdb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2030/receiptcodec/core/types"
	"github.com/eth2030/receiptcodec/rlp"
)

func testReceipts() types.Receipts {
	legacy := types.NewReceipt(types.LegacyTxType, true, 21000)
	legacy.Logs = []*types.Log{}

	access := types.NewReceipt(types.AccessListTxType, false, 50000)
	access.Logs = []*types.Log{}

	dynamic := types.NewReceipt(types.DynamicFeeTxType, true, 120000)
	dynamic.Logs = []*types.Log{
		types.NewLog(
			types.HexToAddress("0x0000000000000000000000000000000000000011"),
			[]types.Hash{types.HexToHash("0xdead"), types.HexToHash("0xbeef")},
			[]byte{0x01, 0x00, 0xff},
		),
	}
	dynamic.Bloom = types.LogsBloom(dynamic.Logs)
	return types.Receipts{legacy, access, dynamic}
}

func requireReceiptsEqual(t *testing.T, want, got types.Receipts) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, want[i].Equal(got[i]), "receipt %d: want %+v, got %+v", i, want[i], got[i])
	}
}

// backends returns every Database implementation under test.
func backends(t *testing.T) map[string]Database {
	t.Helper()
	mem, err := NewMemoryLevelDB()
	require.NoError(t, err)
	disk, err := OpenLevelDB(t.TempDir(), 0, 0, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		mem.Close()
		disk.Close()
	})
	return map[string]Database{
		"memorydb":       NewMemoryDB(),
		"leveldb-memory": mem,
		"leveldb-disk":   disk,
	}
}

func TestDatabaseBasics(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := db.Get([]byte("missing"))
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			ok, err := db.Has([]byte("k"))
			require.NoError(t, err)
			require.True(t, ok)

			val, err := db.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v"), val)

			require.NoError(t, db.Delete([]byte("k")))
			require.NoError(t, db.Delete([]byte("k")))
			ok, err = db.Has([]byte("k"))
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestDatabaseBatch(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Put([]byte("gone"), []byte("x")))

			b := db.NewBatch()
			require.NoError(t, b.Put([]byte("a"), []byte("1")))
			require.NoError(t, b.Put([]byte("b"), []byte("22")))
			require.NoError(t, b.Delete([]byte("gone")))
			require.Equal(t, 1+1+1+2+4, b.ValueSize())

			ok, _ := db.Has([]byte("a"))
			require.False(t, ok, "batch visible before Write")

			require.NoError(t, b.Write())
			val, err := db.Get([]byte("b"))
			require.NoError(t, err)
			require.Equal(t, []byte("22"), val)
			ok, _ = db.Has([]byte("gone"))
			require.False(t, ok)

			b.Reset()
			require.Zero(t, b.ValueSize())
		})
	}
}

func TestDatabaseIterator(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"p3", "p1", "q1", "p2"} {
				require.NoError(t, db.Put([]byte(k), []byte("v"+k)))
			}
			it := db.NewIterator([]byte("p"))
			defer it.Release()

			var keys []string
			for it.Next() {
				keys = append(keys, string(it.Key()))
				require.Equal(t, "v"+string(it.Key()), string(it.Value()))
			}
			require.NoError(t, it.Error())
			require.Equal(t, []string{"p1", "p2", "p3"}, keys)
		})
	}
}

func TestMemoryDBClosed(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	_, err := db.Get([]byte("k"))
	require.ErrorIs(t, err, errMemoryClosed)
	require.ErrorIs(t, db.Put([]byte("k"), nil), errMemoryClosed)
	require.Zero(t, db.Len())
}

func TestMemoryDBCopiesValues(t *testing.T) {
	db := NewMemoryDB()
	val := []byte("abc")
	require.NoError(t, db.Put([]byte("k"), val))
	val[0] = 'x'

	got, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got)
	got[1] = 'y'

	again, _ := db.Get([]byte("k"))
	require.Equal(t, []byte("abc"), again)
}

func TestLevelDBReopen(t *testing.T) {
	dir := t.TempDir()
	hash := types.HexToHash("0x01")
	receipts := testReceipts()

	db, err := OpenLevelDB(dir, 16, 16, false)
	require.NoError(t, err)
	require.Equal(t, dir, db.Path())
	require.NoError(t, WriteReceipts(db, 7, hash, receipts))
	require.NoError(t, db.Compact(nil, nil))
	stats, err := db.Stat("leveldb.stats")
	require.NoError(t, err)
	require.NotEmpty(t, stats)
	require.NoError(t, db.Close())

	db, err = OpenLevelDB(dir, 16, 16, true)
	require.NoError(t, err)
	defer db.Close()
	got, err := ReadReceipts(db, 7, hash)
	require.NoError(t, err)
	requireReceiptsEqual(t, receipts, got)
}

func TestReceiptKey(t *testing.T) {
	hash := types.HexToHash("0xabcdef")
	key := receiptKey(0x0102, hash)
	require.Len(t, key, receiptKeyLength)
	require.Equal(t, byte('r'), key[0])
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x01, 0x02}, key[1:9])
	require.True(t, bytes.HasPrefix(key, receiptNumberPrefix(0x0102)))

	number, parsed, ok := parseReceiptKey(key)
	require.True(t, ok)
	require.Equal(t, uint64(0x0102), number)
	require.Equal(t, hash, parsed)

	_, _, ok = parseReceiptKey(key[:len(key)-1])
	require.False(t, ok)
	_, _, ok = parseReceiptKey(ancientHeadKey)
	require.False(t, ok)
}

func TestReceiptAccessors(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			hash := types.HexToHash("0xaa")
			receipts := testReceipts()

			require.False(t, HasReceipts(db, 1, hash))
			_, err := ReadReceipts(db, 1, hash)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, WriteReceipts(db, 1, hash, receipts))
			require.True(t, HasReceipts(db, 1, hash))

			raw, err := ReadRawReceipts(db, 1, hash)
			require.NoError(t, err)
			require.Equal(t, rlp.EncodeToBytesOf(receipts), raw)

			got, err := ReadReceipts(db, 1, hash)
			require.NoError(t, err)
			requireReceiptsEqual(t, receipts, got)

			require.NoError(t, DeleteReceipts(db, 1, hash))
			require.False(t, HasReceipts(db, 1, hash))
		})
	}
}

func TestReceiptAccessorsEmptyList(t *testing.T) {
	db := NewMemoryDB()
	hash := types.HexToHash("0x02")
	require.NoError(t, WriteReceipts(db, 2, hash, nil))

	raw, err := ReadRawReceipts(db, 2, hash)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc0}, raw)

	got, err := ReadReceipts(db, 2, hash)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadReceiptsCorrupted(t *testing.T) {
	db := NewMemoryDB()
	hash := types.HexToHash("0x03")
	require.NoError(t, WriteRawReceipts(db, 3, hash, []byte{0xc1, 0xc0}))

	_, err := ReadReceipts(db, 3, hash)
	require.ErrorIs(t, err, types.ErrEmptyListReceipt)
}

func TestWriteReceiptsRejectsInvalid(t *testing.T) {
	db := NewMemoryDB()
	bad := types.NewReceipt(types.TxType(5), true, 1)
	bad.Logs = []*types.Log{}

	err := WriteReceipts(db, 1, types.Hash{}, types.Receipts{bad})
	require.ErrorIs(t, err, types.ErrUnsupportedReceiptType)
	require.Zero(t, db.Len())
}

func TestIterateReceipts(t *testing.T) {
	db := NewMemoryDB()
	receipts := testReceipts()
	hashes := []types.Hash{types.HexToHash("0x0a"), types.HexToHash("0x0b"), types.HexToHash("0x0c")}
	for i, hash := range hashes {
		require.NoError(t, WriteReceipts(db, uint64(10-i), hash, receipts[:i+1]))
	}
	require.NoError(t, db.Put(ancientHeadKey, encodeBlockNumber(1)))

	var numbers []uint64
	err := IterateReceipts(db, func(number uint64, hash types.Hash, data []byte) error {
		numbers = append(numbers, number)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{8, 9, 10}, numbers)

	stop := errors.New("stop")
	calls := 0
	err = IterateReceipts(db, func(uint64, types.Hash, []byte) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)

	require.Equal(t, []types.Hash{hashes[1]}, ReadReceiptHashes(db, 9))
	require.Empty(t, ReadReceiptHashes(db, 11))
}
