package rlp

import (
	"io"
	"sync"
	"sync/atomic"
)

const (
	pooledBufferSize = 4 << 10
	// Buffers that grew past this are dropped instead of pooled.
	pooledBufferLimit = 1 << 20
)

// EncoderStats counts the work done through an EncoderPool.
type EncoderStats struct {
	Reused    atomic.Int64 // buffers taken from the pool
	Allocated atomic.Int64 // buffers created because the pool was empty
	Values    atomic.Int64 // values encoded
	Bytes     atomic.Int64 // encoded output bytes
}

// EncoderStatsSnapshot is a copy of EncoderStats at one point in time.
type EncoderStatsSnapshot struct {
	Reused, Allocated, Values, Bytes int64
}

// Snapshot reads all counters.
func (s *EncoderStats) Snapshot() EncoderStatsSnapshot {
	return EncoderStatsSnapshot{
		Reused:    s.Reused.Load(),
		Allocated: s.Allocated.Load(),
		Values:    s.Values.Load(),
		Bytes:     s.Bytes.Load(),
	}
}

func (s *EncoderStats) add(values, bytes int) {
	s.Values.Add(int64(values))
	s.Bytes.Add(int64(bytes))
}

// EncoderPool hands out scratch buffers for encoding Encodable values,
// so that hot paths such as receipt list serialization do not allocate a
// fresh buffer per call. It is safe for concurrent use.
type EncoderPool struct {
	buffers sync.Pool
	stats   EncoderStats
}

// NewEncoderPool returns an empty pool.
func NewEncoderPool() *EncoderPool {
	return new(EncoderPool)
}

// Stats returns the live counters of the pool.
func (ep *EncoderPool) Stats() *EncoderStats {
	return &ep.stats
}

func (ep *EncoderPool) acquire() *[]byte {
	if b, ok := ep.buffers.Get().(*[]byte); ok {
		ep.stats.Reused.Add(1)
		*b = (*b)[:0]
		return b
	}
	ep.stats.Allocated.Add(1)
	b := make([]byte, 0, pooledBufferSize)
	return &b
}

func (ep *EncoderPool) release(b *[]byte) {
	if cap(*b) <= pooledBufferLimit {
		ep.buffers.Put(b)
	}
}

// EncodeBytes returns the encoding of e in a slice of its own. The exact
// size is known up front, so no scratch buffer is involved.
func (ep *EncoderPool) EncodeBytes(e Encodable) []byte {
	out := EncodeToBytesOf(e)
	ep.stats.add(1, len(out))
	return out
}

// With encodes e into a scratch buffer and calls fn with the result. enc
// must not be retained after fn returns.
func (ep *EncoderPool) With(e Encodable, fn func(enc []byte) error) error {
	b := ep.acquire()
	defer ep.release(b)

	*b = e.AppendRLP(*b)
	ep.stats.add(1, len(*b))
	return fn(*b)
}

// WriteTo writes the encoding of e to w through a scratch buffer.
func (ep *EncoderPool) WriteTo(w io.Writer, e Encodable) (int, error) {
	var n int
	err := ep.With(e, func(enc []byte) (err error) {
		n, err = w.Write(enc)
		return err
	})
	return n, err
}

// EncodeBatch encodes items as one RLP list. Each item counts as one
// encoded value.
func EncodeBatch[E Encodable](ep *EncoderPool, items []E) []byte {
	b := ep.acquire()
	defer ep.release(b)

	*b = AppendList(*b, items)
	ep.stats.add(len(items), len(*b))
	return append([]byte(nil), *b...)
}

// EncodeBool returns the encoding of v.
func EncodeBool(v bool) []byte { return AppendBool(nil, v) }

// EncodeUint64 returns the encoding of v.
func EncodeUint64(v uint64) []byte {
	return AppendUint64(make([]byte, 0, Uint64Size(v)), v)
}
