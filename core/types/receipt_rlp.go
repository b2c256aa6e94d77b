package types

import (
	"errors"

	"github.com/eth2030/receiptcodec/rlp"
)

var (
	// ErrEmptyReceipt is returned when decoding from an empty buffer.
	ErrEmptyReceipt = errors.New("receipt: cannot decode from empty input")

	// ErrEmptyListReceipt is returned for the input 0xc0, which is not a
	// valid encoding of any receipt type.
	ErrEmptyListReceipt = errors.New("receipt: an empty list is not a valid receipt encoding")

	// ErrUnsupportedReceiptType is returned for an envelope discriminant
	// other than 0x01 or 0x02. It is wrapped with the offending byte.
	ErrUnsupportedReceiptType = errors.New("receipt: unsupported receipt type")

	// ErrEmptyTypedReceipt is returned for a string envelope without
	// content, i.e. without a discriminant byte.
	ErrEmptyTypedReceipt = errors.New("receipt: typed envelope is empty")
)

// payloadSize is the payload of the inner list
// [success, cumulativeGasUsed, bloom, logs].
func (r *Receipt) payloadSize() int {
	return rlp.BoolSize(r.Success) +
		rlp.Uint64Size(r.CumulativeGasUsed) +
		r.Bloom.EncodingSize() +
		rlp.ListSize(rlp.SliceSize(r.Logs))
}

// innerSize is the size of the inner list, header included.
func (r *Receipt) innerSize() int {
	return rlp.ListSize(r.payloadSize())
}

func (r *Receipt) appendInner(dst []byte) []byte {
	dst = rlp.AppendListHeader(dst, r.payloadSize())
	dst = rlp.AppendBool(dst, r.Success)
	dst = rlp.AppendUint64(dst, r.CumulativeGasUsed)
	dst = r.Bloom.AppendRLP(dst)
	return rlp.AppendList(dst, r.Logs)
}

// EncodedLength returns the number of bytes EncodeTo writes. For legacy
// receipts this is the inner list size and withHeader has no effect. For
// typed receipts the envelope content is the discriminant plus the inner
// list, optionally preceded by its string header.
func (r *Receipt) EncodedLength(withHeader bool) int {
	inner := r.innerSize()
	if !r.Type.Typed() {
		return inner
	}
	content := 1 + inner
	if withHeader {
		return rlp.HeaderSize(uint64(content)) + content
	}
	return content
}

// EncodeTo appends the consensus encoding of r to dst.
//
// Legacy receipts are the bare inner list. Typed receipts are
// type || inner list, wrapped in an RLP string header when withHeader is
// set. The headerless form is the one hashed into the receipts trie; the
// framed form is used when the receipt is an element of an outer list.
func (r *Receipt) EncodeTo(dst []byte, withHeader bool) []byte {
	if !r.Type.Typed() {
		return r.appendInner(dst)
	}
	if withHeader {
		dst = rlp.Header{PayloadLength: uint64(1 + r.innerSize())}.Append(dst)
	}
	dst = append(dst, byte(r.Type))
	return r.appendInner(dst)
}

// EncodingSize implements rlp.Encodable using the framed form.
func (r *Receipt) EncodingSize() int {
	return r.EncodedLength(true)
}

// AppendRLP implements rlp.Encodable using the framed form.
func (r *Receipt) AppendRLP(dst []byte) []byte {
	return r.EncodeTo(dst, true)
}

// MarshalBinary returns the headerless consensus encoding.
func (r *Receipt) MarshalBinary() ([]byte, error) {
	return r.EncodeTo(make([]byte, 0, r.EncodedLength(false)), false), nil
}

// UnmarshalBinary decodes the headerless consensus encoding produced by
// MarshalBinary. The input must hold exactly one receipt.
func (r *Receipt) UnmarshalBinary(b []byte) error {
	dec, err := DecodeReceiptBytes(b)
	if err != nil {
		return err
	}
	*r = *dec
	return nil
}

// DecodeRLP implements rlp.Decodable.
func (r *Receipt) DecodeRLP(c *rlp.Cursor) error {
	dec, err := DecodeReceipt(c)
	if err != nil {
		return err
	}
	*r = *dec
	return nil
}

// receiptEnvelope is the framing of an encoded receipt, determined before
// any receipt field is read.
type receiptEnvelope struct {
	txType TxType

	// framed is set when a typed receipt is wrapped in a string header.
	// contentLength is then the declared header payload: the discriminant
	// plus the inner list.
	framed        bool
	contentLength uint64
}

// classifyReceipt consumes the envelope of the receipt at the front of c and
// leaves the cursor at the inner list.
//
// A first byte above 0xc0 starts a legacy inner list and nothing is
// consumed. A first byte below 0x80 is a bare discriminant. Anything else
// below 0xc0 is a string header framing discriminant and inner list.
func classifyReceipt(c *rlp.Cursor) (receiptEnvelope, error) {
	first, err := c.Peek()
	if err != nil {
		return receiptEnvelope{}, ErrEmptyReceipt
	}
	switch {
	case first == rlp.EmptyListCode:
		return receiptEnvelope{}, ErrEmptyListReceipt
	case first > rlp.EmptyListCode:
		return receiptEnvelope{txType: LegacyTxType}, nil
	}

	var env receiptEnvelope
	if first >= rlp.EmptyStringCode {
		h, err := rlp.DecodeHeader(c)
		if err != nil {
			return receiptEnvelope{}, err
		}
		if h.PayloadLength == 0 {
			return receiptEnvelope{}, ErrEmptyTypedReceipt
		}
		env.framed = true
		env.contentLength = h.PayloadLength
	}
	b, err := c.ReadByte()
	if err != nil {
		return receiptEnvelope{}, err
	}
	if env.txType, err = ParseTxType(b); err != nil {
		return receiptEnvelope{}, err
	}
	return env, nil
}

// DecodeReceipt decodes one receipt from the front of c. Legacy, framed
// typed and headerless typed encodings are all accepted. Bytes following
// the receipt are left unread; on error the cursor does not move.
func DecodeReceipt(c *rlp.Cursor) (*Receipt, error) {
	var r *Receipt
	err := c.Try(func(c *rlp.Cursor) error {
		env, err := classifyReceipt(c)
		if err != nil {
			return err
		}
		before := c.Len()
		if r, err = decodeReceiptFields(c, env.txType); err != nil {
			return err
		}
		if env.framed {
			// The discriminant counts toward the envelope content.
			got := 1 + before - c.Len()
			if uint64(got) != env.contentLength {
				return &rlp.ListLengthMismatchError{Expected: int(env.contentLength), Got: got}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeReceiptBytes decodes a receipt that must occupy all of b.
func DecodeReceiptBytes(b []byte) (*Receipt, error) {
	c := rlp.NewCursor(b)
	r, err := DecodeReceipt(c)
	if err != nil {
		return nil, err
	}
	if !c.Empty() {
		return nil, rlp.ErrTrailingBytes
	}
	return r, nil
}

// decodeReceiptFields decodes the inner list and tags the result with the
// type determined from the envelope.
func decodeReceiptFields(c *rlp.Cursor, txType TxType) (*Receipt, error) {
	r := &Receipt{Type: txType}
	err := rlp.DecodeList(c, func(c *rlp.Cursor) error {
		var err error
		if r.Success, err = c.Bool(); err != nil {
			return err
		}
		if r.CumulativeGasUsed, err = c.Uint64(); err != nil {
			return err
		}
		if err := r.Bloom.DecodeRLP(c); err != nil {
			return err
		}
		return rlp.DecodeListItems(c, func(c *rlp.Cursor) error {
			l := new(Log)
			if err := l.DecodeRLP(c); err != nil {
				return err
			}
			r.Logs = append(r.Logs, l)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
