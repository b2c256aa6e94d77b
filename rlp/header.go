package rlp

import "math/bits"

// Prefix codes of the RLP header byte.
const (
	// EmptyStringCode is the header of a zero-length string and the base of
	// all short string headers.
	EmptyStringCode = 0x80

	// EmptyListCode is the header of a zero-length list and the base of all
	// short list headers.
	EmptyListCode = 0xc0

	// longStringCode and longListCode are the bases of the long-form headers
	// (base + length-of-length).
	longStringCode = 0xb7
	longListCode   = 0xf7

	// maxShortPayload is the largest payload length encoded in the header
	// byte itself.
	maxShortPayload = 55
)

// Header describes the payload that follows it: whether it is a list or a
// string, and how many bytes it occupies. It is recomputed on every encode.
type Header struct {
	List          bool
	PayloadLength uint64
}

// IntSize returns the number of bytes of n as a minimal big-endian integer.
// Zero has no significant bytes.
func IntSize(n uint64) int {
	return (bits.Len64(n) + 7) / 8
}

// HeaderSize returns the number of bytes of the header for a payload of the
// given length: one byte for short payloads, one plus the length-of-length
// for long ones.
func HeaderSize(payloadLen uint64) int {
	if payloadLen <= maxShortPayload {
		return 1
	}
	return 1 + IntSize(payloadLen)
}

// EncodingSize returns the number of bytes Append writes.
func (h Header) EncodingSize() int {
	return HeaderSize(h.PayloadLength)
}

// Append appends the minimal encoding of the header to dst.
func (h Header) Append(dst []byte) []byte {
	short, long := byte(EmptyStringCode), byte(longStringCode)
	if h.List {
		short, long = EmptyListCode, longListCode
	}
	if h.PayloadLength <= maxShortPayload {
		return append(dst, short+byte(h.PayloadLength))
	}
	dst = append(dst, long+byte(IntSize(h.PayloadLength)))
	return appendUintBE(dst, h.PayloadLength)
}

// DecodeHeader reads a header from the front of c. A single byte below 0x80
// is its own payload: it yields a string header of length one and is not
// consumed. On error the cursor is left where it was.
func DecodeHeader(c *Cursor) (Header, error) {
	var h Header
	err := c.Try(func(c *Cursor) error {
		var err error
		h, err = decodeHeader(c)
		return err
	})
	return h, err
}

func decodeHeader(c *Cursor) (Header, error) {
	b, err := c.Peek()
	if err != nil {
		return Header{}, err
	}
	var h Header
	switch {
	case b < EmptyStringCode:
		return Header{PayloadLength: 1}, nil

	case b <= longStringCode:
		c.pos++
		h.PayloadLength = uint64(b - EmptyStringCode)
		if h.PayloadLength == 1 {
			next, err := c.Peek()
			if err != nil {
				return Header{}, err
			}
			if next < EmptyStringCode {
				return Header{}, ErrNonCanonicalSize
			}
		}

	case b < EmptyListCode:
		c.pos++
		if h.PayloadLength, err = readLongSize(c, int(b-longStringCode)); err != nil {
			return Header{}, err
		}

	case b <= longListCode:
		c.pos++
		h.List = true
		h.PayloadLength = uint64(b - EmptyListCode)

	default:
		c.pos++
		h.List = true
		if h.PayloadLength, err = readLongSize(c, int(b-longListCode)); err != nil {
			return Header{}, err
		}
	}
	if h.PayloadLength > uint64(c.Len()) {
		return Header{}, ErrInputTooShort
	}
	return h, nil
}

// readLongSize reads the big-endian payload length of a long-form header.
func readLongSize(c *Cursor, lenOfLen int) (uint64, error) {
	if lenOfLen == 0 || lenOfLen > 8 {
		return 0, ErrInputTooShort
	}
	b, err := c.Next(lenOfLen)
	if err != nil {
		return 0, err
	}
	if b[0] == 0 {
		return 0, ErrLeadingZero
	}
	size := readUintBE(b)
	if size <= maxShortPayload {
		return 0, ErrNonCanonicalSize
	}
	return size, nil
}

// appendUintBE appends u as a big-endian integer without leading zeros.
// Zero appends nothing.
func appendUintBE(dst []byte, u uint64) []byte {
	for i := IntSize(u) - 1; i >= 0; i-- {
		dst = append(dst, byte(u>>(8*uint(i))))
	}
	return dst
}

func readUintBE(b []byte) uint64 {
	var val uint64
	for _, x := range b {
		val = (val << 8) | uint64(x)
	}
	return val
}
