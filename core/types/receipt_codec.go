package types

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/eth2030/receiptcodec/metrics"
	"github.com/eth2030/receiptcodec/rlp"
)

var (
	errNilReceipt = errors.New("receipt_codec: nil receipt")
	errNilLog     = errors.New("receipt_codec: nil log")
)

// ReceiptCodec provides validated encoding and strict decoding of single
// receipts and receipt lists. Decoding requires the input to hold exactly
// the requested value. The zero value is ready to use.
type ReceiptCodec struct {
	pool *rlp.EncoderPool
}

// NewReceiptCodec returns a codec that encodes through a pooled buffer.
func NewReceiptCodec() *ReceiptCodec {
	return &ReceiptCodec{pool: rlp.NewEncoderPool()}
}

// EncoderStats returns the counters of the codec's encoder pool, or nil
// for the zero codec.
func (rc *ReceiptCodec) EncoderStats() *rlp.EncoderStats {
	if rc.pool == nil {
		return nil
	}
	return rc.pool.Stats()
}

func validateReceipt(r *Receipt) error {
	if r == nil {
		return errNilReceipt
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: 0x%02x", ErrUnsupportedReceiptType, uint8(r.Type))
	}
	for _, l := range r.Logs {
		if l == nil {
			return errNilLog
		}
	}
	return nil
}

func (rc *ReceiptCodec) encode(e rlp.Encodable) []byte {
	if rc.pool != nil {
		return rc.pool.EncodeBytes(e)
	}
	return rlp.EncodeToBytesOf(e)
}

// EncodeReceipt encodes a single receipt in its framed form.
func (rc *ReceiptCodec) EncodeReceipt(r *Receipt) ([]byte, error) {
	if err := validateReceipt(r); err != nil {
		return nil, err
	}
	enc := rc.encode(r)
	metrics.ReceiptsEncoded.Inc()
	metrics.ReceiptBytesEncoded.Add(int64(len(enc)))
	return enc, nil
}

// DecodeReceipt decodes a single receipt occupying all of data.
func (rc *ReceiptCodec) DecodeReceipt(data []byte) (*Receipt, error) {
	r, err := DecodeReceiptBytes(data)
	if err != nil {
		metrics.ReceiptDecodeErrors.Inc()
		return nil, fmt.Errorf("receipt_codec: decode receipt: %w", err)
	}
	metrics.ReceiptsDecoded.Inc()
	return r, nil
}

// EncodeReceipts encodes receipts as an RLP list. A nil slice encodes as
// the empty list.
func (rc *ReceiptCodec) EncodeReceipts(receipts []*Receipt) ([]byte, error) {
	for i, r := range receipts {
		if err := validateReceipt(r); err != nil {
			return nil, fmt.Errorf("receipt_codec: receipt %d: %w", i, err)
		}
	}
	enc := rc.encode(Receipts(receipts))
	metrics.ReceiptsEncoded.Add(int64(len(receipts)))
	metrics.ReceiptBytesEncoded.Add(int64(len(enc)))
	return enc, nil
}

// DecodeReceipts decodes an RLP list of receipts occupying all of data.
func (rc *ReceiptCodec) DecodeReceipts(data []byte) ([]*Receipt, error) {
	c := rlp.NewCursor(data)
	var rs Receipts
	if err := rs.DecodeRLP(c); err != nil {
		metrics.ReceiptDecodeErrors.Inc()
		return nil, fmt.Errorf("receipt_codec: decode receipts: %w", err)
	}
	if !c.Empty() {
		metrics.ReceiptDecodeErrors.Inc()
		return nil, fmt.Errorf("receipt_codec: decode receipts: %w", rlp.ErrTrailingBytes)
	}
	metrics.ReceiptsDecoded.Add(int64(len(rs)))
	return rs, nil
}

// EncodeReceiptsParallel encodes each receipt independently on up to
// workers goroutines and returns the framed encodings in input order.
// A worker count below one means one worker per receipt.
func (rc *ReceiptCodec) EncodeReceiptsParallel(ctx context.Context, receipts []*Receipt, workers int) ([][]byte, error) {
	out := make([][]byte, len(receipts))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, r := range receipts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			enc, err := rc.EncodeReceipt(r)
			if err != nil {
				return fmt.Errorf("receipt_codec: receipt %d: %w", i, err)
			}
			out[i] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiptEqual compares two receipts for equality on their consensus fields.
func ReceiptEqual(a, b *Receipt) bool {
	return a.Equal(b)
}

// ReceiptSize returns the framed encoded size of a receipt without
// encoding it. Returns 0 for a nil receipt.
func ReceiptSize(r *Receipt) int {
	if r == nil {
		return 0
	}
	return r.EncodingSize()
}
