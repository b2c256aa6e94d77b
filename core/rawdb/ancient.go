package rawdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/snappy"

	"github.com/eth2030/receiptcodec/log"
	"github.com/eth2030/receiptcodec/metrics"
)

var (
	ErrAncientClosed        = errors.New("ancient: table closed")
	ErrAncientReadOnly      = errors.New("ancient: read-only mode")
	ErrAncientOutOfBounds   = errors.New("ancient: item number out of bounds")
	ErrAncientNotSequential = errors.New("ancient: items must be appended sequentially")
	ErrAncientCorrupted     = errors.New("ancient: data corrupted")
)

// AncientConfig configures a single ancient table.
type AncientConfig struct {
	Dir      string // directory for data and index files
	Name     string // table name, used for file names
	ReadOnly bool
	Compress bool // snappy-compress items
}

// AncientTable is an append-only indexed table for frozen receipt lists.
// Item n is located through the n'th entry of the index file. All methods
// are safe for concurrent use.
type AncientTable struct {
	mu     sync.RWMutex
	config AncientConfig
	log    *log.Logger

	data     *os.File
	index    *os.File
	metaPath string // holds the persisted tail

	tail     uint64 // first readable item
	head     uint64 // next item number to be written
	dataSize uint64

	closed bool
}

// indexEntrySize is the size of an index entry: offset (8), stored
// length (4) and raw length (4).
const indexEntrySize = 16

type indexEntry struct {
	offset    uint64
	storedLen uint32
	rawLen    uint32
}

func (e indexEntry) append(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint64(dst, e.offset)
	dst = binary.BigEndian.AppendUint32(dst, e.storedLen)
	return binary.BigEndian.AppendUint32(dst, e.rawLen)
}

func parseIndexEntry(b []byte) indexEntry {
	return indexEntry{
		offset:    binary.BigEndian.Uint64(b[0:8]),
		storedLen: binary.BigEndian.Uint32(b[8:12]),
		rawLen:    binary.BigEndian.Uint32(b[12:16]),
	}
}

// compressed reports whether the item was stored in snappy form. Items are
// only stored compressed when that is strictly smaller.
func (e indexEntry) compressed() bool { return e.storedLen != e.rawLen }

// OpenAncientTable opens or creates an ancient table. Index entries that
// point past the end of the data file are dropped.
func OpenAncientTable(config AncientConfig) (*AncientTable, error) {
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ancient: mkdir: %w", err)
	}
	flags := os.O_RDWR | os.O_CREATE
	if config.ReadOnly {
		flags = os.O_RDONLY
	}
	data, err := os.OpenFile(filepath.Join(config.Dir, config.Name+".rdat"), flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ancient: open data %s: %w", config.Name, err)
	}
	index, err := os.OpenFile(filepath.Join(config.Dir, config.Name+".ridx"), flags, 0o644)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("ancient: open index %s: %w", config.Name, err)
	}
	t := &AncientTable{
		config:   config,
		log:      log.Module("ancient").With("table", config.Name),
		data:     data,
		index:    index,
		metaPath: filepath.Join(config.Dir, config.Name+".rmeta"),
	}
	if err := t.repair(); err != nil {
		t.Close()
		return nil, err
	}
	if err := t.loadTail(); err != nil {
		t.Close()
		return nil, err
	}
	t.updateGauges()
	t.log.Debug("Opened ancient table", "items", t.head, "bytes", t.dataSize)
	return t, nil
}

// repair derives head and data size from the files on disk.
func (t *AncientTable) repair() error {
	dataStat, err := t.data.Stat()
	if err != nil {
		return err
	}
	indexStat, err := t.index.Stat()
	if err != nil {
		return err
	}
	dataSize := uint64(dataStat.Size())
	items := uint64(indexStat.Size()) / indexEntrySize

	buf := make([]byte, indexEntrySize)
	for items > 0 {
		if _, err := t.index.ReadAt(buf, int64(items-1)*indexEntrySize); err != nil {
			return fmt.Errorf("ancient: read index: %w", err)
		}
		e := parseIndexEntry(buf)
		if e.offset+uint64(e.storedLen) <= dataSize {
			dataSize = e.offset + uint64(e.storedLen)
			break
		}
		items--
	}
	if items == 0 {
		dataSize = 0
	}
	if !t.config.ReadOnly && (uint64(indexStat.Size()) != items*indexEntrySize || uint64(dataStat.Size()) != dataSize) {
		t.log.Warn("Truncating dangling ancient data", "items", items, "bytes", dataSize)
		if err := t.index.Truncate(int64(items * indexEntrySize)); err != nil {
			return err
		}
		if err := t.data.Truncate(int64(dataSize)); err != nil {
			return err
		}
	}
	t.head = items
	t.dataSize = dataSize
	return nil
}

// Append adds an item. Its number must equal Head().
func (t *AncientTable) Append(item uint64, blob []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.writable(); err != nil {
		return err
	}
	if item != t.head {
		return fmt.Errorf("%w: expected item %d, got %d", ErrAncientNotSequential, t.head, item)
	}
	stored := blob
	if t.config.Compress && len(blob) > 0 {
		if enc := snappy.Encode(nil, blob); len(enc) < len(blob) {
			stored = enc
		}
	}
	entry := indexEntry{offset: t.dataSize, storedLen: uint32(len(stored)), rawLen: uint32(len(blob))}
	if _, err := t.data.WriteAt(stored, int64(entry.offset)); err != nil {
		return fmt.Errorf("ancient: write data: %w", err)
	}
	if _, err := t.index.WriteAt(entry.append(nil), int64(t.head)*indexEntrySize); err != nil {
		return fmt.Errorf("ancient: write index: %w", err)
	}
	t.head++
	t.dataSize += uint64(len(stored))
	t.updateGauges()
	return nil
}

// AppendBatch adds sequential items starting at the given number.
func (t *AncientTable) AppendBatch(start uint64, blobs [][]byte) error {
	for i, blob := range blobs {
		if err := t.Append(start+uint64(i), blob); err != nil {
			return err
		}
	}
	return nil
}

// Retrieve reads a single item by its number.
func (t *AncientTable) Retrieve(item uint64) ([]byte, error) {
	defer metrics.NewTimer(metrics.AncientRetrieveTime).Stop()

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return nil, ErrAncientClosed
	}
	if item < t.tail || item >= t.head {
		return nil, fmt.Errorf("%w: item %d (range [%d, %d))", ErrAncientOutOfBounds, item, t.tail, t.head)
	}
	buf := make([]byte, indexEntrySize)
	if _, err := t.index.ReadAt(buf, int64(item)*indexEntrySize); err != nil {
		return nil, fmt.Errorf("ancient: read index: %w", err)
	}
	entry := parseIndexEntry(buf)
	if entry.storedLen == 0 {
		return []byte{}, nil
	}
	stored := make([]byte, entry.storedLen)
	if _, err := t.data.ReadAt(stored, int64(entry.offset)); err != nil {
		return nil, fmt.Errorf("ancient: read data: %w", err)
	}
	if !entry.compressed() {
		return stored, nil
	}
	blob, err := snappy.Decode(nil, stored)
	if err != nil {
		return nil, fmt.Errorf("%w: item %d: %v", ErrAncientCorrupted, item, err)
	}
	if len(blob) != int(entry.rawLen) {
		return nil, fmt.Errorf("%w: item %d has %d bytes, want %d", ErrAncientCorrupted, item, len(blob), entry.rawLen)
	}
	return blob, nil
}

// RetrieveRange reads count sequential items starting at start.
func (t *AncientTable) RetrieveRange(start, count uint64) ([][]byte, error) {
	blobs := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		blob, err := t.Retrieve(start + i)
		if err != nil {
			return blobs, err
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

// Head returns the next item number to be written.
func (t *AncientTable) Head() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.head
}

// Tail returns the first readable item number.
func (t *AncientTable) Tail() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tail
}

// Count returns the number of readable items.
func (t *AncientTable) Count() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.head - t.tail
}

// TruncateHead removes items from the end, keeping items below the given
// number.
func (t *AncientTable) TruncateHead(below uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.writable(); err != nil {
		return err
	}
	if below >= t.head {
		return nil
	}
	below = max(below, t.tail)

	var dataSize uint64
	if below > 0 {
		buf := make([]byte, indexEntrySize)
		if _, err := t.index.ReadAt(buf, int64(below-1)*indexEntrySize); err != nil {
			return fmt.Errorf("ancient: read index: %w", err)
		}
		e := parseIndexEntry(buf)
		dataSize = e.offset + uint64(e.storedLen)
	}
	if err := t.data.Truncate(int64(dataSize)); err != nil {
		return err
	}
	if err := t.index.Truncate(int64(below) * indexEntrySize); err != nil {
		return err
	}
	t.head = below
	t.dataSize = dataSize
	t.updateGauges()
	return nil
}

// TruncateTail hides items below newTail. The files are not compacted;
// the tail is recorded in the table's meta file and survives a reopen.
func (t *AncientTable) TruncateTail(newTail uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.writable(); err != nil {
		return err
	}
	if newTail <= t.tail {
		return nil
	}
	newTail = min(newTail, t.head)
	if err := t.storeTail(newTail); err != nil {
		return err
	}
	t.tail = newTail
	t.updateGauges()
	return nil
}

// loadTail reads the persisted tail. A missing meta file means tail 0. A
// tail beyond the repaired head is clamped to it.
func (t *AncientTable) loadTail() error {
	meta, err := os.ReadFile(t.metaPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ancient: read meta: %w", err)
	}
	if len(meta) != 8 {
		return fmt.Errorf("%w: meta file has %d bytes", ErrAncientCorrupted, len(meta))
	}
	t.tail = min(binary.BigEndian.Uint64(meta), t.head)
	return nil
}

// storeTail replaces the meta file through a rename so a crash leaves
// either the old or the new tail.
func (t *AncientTable) storeTail(tail uint64) error {
	tmp := t.metaPath + ".tmp"
	if err := os.WriteFile(tmp, binary.BigEndian.AppendUint64(nil, tail), 0o644); err != nil {
		return fmt.Errorf("ancient: write meta: %w", err)
	}
	if err := os.Rename(tmp, t.metaPath); err != nil {
		return fmt.Errorf("ancient: write meta: %w", err)
	}
	return nil
}

// Sync flushes data and index files to disk.
func (t *AncientTable) Sync() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return ErrAncientClosed
	}
	if err := t.data.Sync(); err != nil {
		return err
	}
	return t.index.Sync()
}

// Close shuts down the table.
func (t *AncientTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return errors.Join(t.data.Close(), t.index.Close())
}

// AncientStats holds statistics about an AncientTable.
type AncientStats struct {
	Name       string
	Items      uint64
	Tail       uint64
	Head       uint64
	DataBytes  uint64
	IndexBytes uint64
	Compressed bool
}

// Stats returns statistics about this table.
func (t *AncientTable) Stats() AncientStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return AncientStats{
		Name:       t.config.Name,
		Items:      t.head - t.tail,
		Tail:       t.tail,
		Head:       t.head,
		DataBytes:  t.dataSize,
		IndexBytes: t.head * indexEntrySize,
		Compressed: t.config.Compress,
	}
}

func (t *AncientTable) writable() error {
	if t.closed {
		return ErrAncientClosed
	}
	if t.config.ReadOnly {
		return ErrAncientReadOnly
	}
	return nil
}

func (t *AncientTable) updateGauges() {
	metrics.AncientItems.Set(int64(t.head - t.tail))
	metrics.AncientBytes.Set(int64(t.dataSize))
}
