package rlp

// Encodable is implemented by values with a hand-written RLP encoding.
//
// EncodingSize must return exactly the number of bytes AppendRLP appends,
// including any header the value writes. Enclosing lists compute their own
// headers from these sizes before any element is written, so a size that
// disagrees with the encoding corrupts every structure the value is part of.
type Encodable interface {
	EncodingSize() int
	AppendRLP(dst []byte) []byte
}

// Decodable is implemented by values that decode themselves from a Cursor.
// DecodeRLP consumes only the bytes of the value and leaves the cursor
// untouched when it fails.
type Decodable interface {
	DecodeRLP(c *Cursor) error
}

// BoolSize returns the encoded size of a boolean scalar.
func BoolSize(bool) int { return 1 }

// AppendBool appends a boolean scalar: 0x01 for true, the empty string for
// false.
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 0x01)
	}
	return append(dst, EmptyStringCode)
}

// Uint64Size returns the encoded size of an unsigned scalar.
func Uint64Size(v uint64) int {
	if v < EmptyStringCode {
		return 1
	}
	return 1 + IntSize(v)
}

// AppendUint64 appends v as a minimal big-endian string. Zero is the empty
// string and values below 0x80 are a single byte.
func AppendUint64(dst []byte, v uint64) []byte {
	switch {
	case v == 0:
		return append(dst, EmptyStringCode)
	case v < EmptyStringCode:
		return append(dst, byte(v))
	}
	dst = append(dst, EmptyStringCode+byte(IntSize(v)))
	return appendUintBE(dst, v)
}

// StringSize returns the encoded size of the byte string b.
func StringSize(b []byte) int {
	if len(b) == 1 && b[0] < EmptyStringCode {
		return 1
	}
	return HeaderSize(uint64(len(b))) + len(b)
}

// AppendBytes appends b as an RLP string.
func AppendBytes(dst, b []byte) []byte {
	if len(b) == 1 && b[0] < EmptyStringCode {
		return append(dst, b[0])
	}
	dst = Header{PayloadLength: uint64(len(b))}.Append(dst)
	return append(dst, b...)
}

// ListSize returns the encoded size of a list with the given payload size.
func ListSize(payloadSize int) int {
	return HeaderSize(uint64(payloadSize)) + payloadSize
}

// AppendListHeader appends the header of a list with the given payload
// size. The caller appends exactly payloadSize bytes of items afterwards.
func AppendListHeader(dst []byte, payloadSize int) []byte {
	return Header{List: true, PayloadLength: uint64(payloadSize)}.Append(dst)
}

// SliceSize returns the summed encoding size of items, i.e. the payload size
// of the list holding them.
func SliceSize[E Encodable](items []E) int {
	var n int
	for _, item := range items {
		n += item.EncodingSize()
	}
	return n
}

// AppendList appends items as an RLP list, header first.
func AppendList[E Encodable](dst []byte, items []E) []byte {
	dst = AppendListHeader(dst, SliceSize(items))
	for _, item := range items {
		dst = item.AppendRLP(dst)
	}
	return dst
}

// EncodeToBytesOf returns the encoding of e in a freshly allocated slice of
// exactly e.EncodingSize() bytes.
func EncodeToBytesOf(e Encodable) []byte {
	return e.AppendRLP(make([]byte, 0, e.EncodingSize()))
}

// DecodeList decodes a list header and runs fn on the cursor positioned at
// the first element. Once fn returns, the bytes it consumed must equal the
// declared payload length exactly. On any failure the cursor is rewound to
// the list header.
func DecodeList(c *Cursor, fn func(*Cursor) error) error {
	return c.Try(func(c *Cursor) error {
		h, err := decodeHeader(c)
		if err != nil {
			return err
		}
		if !h.List {
			return ErrUnexpectedString
		}
		started := c.Len()
		if err := fn(c); err != nil {
			return err
		}
		return checkConsumed(h, started-c.Len())
	})
}

// DecodeListItems decodes a list of a variable number of elements, calling
// fn once per element until the declared payload has been consumed.
func DecodeListItems(c *Cursor, fn func(*Cursor) error) error {
	return c.Try(func(c *Cursor) error {
		h, err := decodeHeader(c)
		if err != nil {
			return err
		}
		if !h.List {
			return ErrUnexpectedString
		}
		started := c.Len()
		for uint64(started-c.Len()) < h.PayloadLength {
			if err := fn(c); err != nil {
				return err
			}
		}
		return checkConsumed(h, started-c.Len())
	})
}

func checkConsumed(h Header, consumed int) error {
	if uint64(consumed) != h.PayloadLength {
		return &ListLengthMismatchError{Expected: int(h.PayloadLength), Got: consumed}
	}
	return nil
}
