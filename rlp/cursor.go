package rlp

// Cursor is a read position over a caller-owned byte slice. Decoders consume
// values from its front and advance it; a failed decode leaves the position
// where the decode started, so callers may retry a different interpretation.
//
// A Cursor must not be shared between concurrent decode calls. Slices it
// returns alias the underlying buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Empty reports whether all input has been consumed.
func (c *Cursor) Empty() bool { return c.pos >= len(c.buf) }

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the unread bytes without consuming them.
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

// Peek returns the next byte without consuming it.
func (c *Cursor) Peek() (byte, error) {
	if c.Empty() {
		return 0, ErrInputTooShort
	}
	return c.buf[c.pos], nil
}

// ReadByte consumes and returns the next byte.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.Peek()
	if err != nil {
		return 0, err
	}
	c.pos++
	return b, nil
}

// Next consumes n bytes and returns them.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, ErrInputTooShort
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Mark returns the current position for a later Reset.
func (c *Cursor) Mark() int { return c.pos }

// Reset rewinds the cursor to a position obtained from Mark.
func (c *Cursor) Reset(mark int) {
	if mark >= 0 && mark <= len(c.buf) {
		c.pos = mark
	}
}

// Try runs fn and rewinds the cursor if fn returns an error.
func (c *Cursor) Try(fn func(*Cursor) error) error {
	mark := c.pos
	if err := fn(c); err != nil {
		c.pos = mark
		return err
	}
	return nil
}

// Raw consumes one complete RLP item, header included, and returns its bytes.
func (c *Cursor) Raw() ([]byte, error) {
	var raw []byte
	err := c.Try(func(c *Cursor) error {
		start := c.pos
		h, err := decodeHeader(c)
		if err != nil {
			return err
		}
		if _, err := c.Next(int(h.PayloadLength)); err != nil {
			return err
		}
		raw = c.buf[start:c.pos]
		return nil
	})
	return raw, err
}

// Bytes consumes a string and returns its content.
func (c *Cursor) Bytes() ([]byte, error) {
	var b []byte
	err := c.Try(func(c *Cursor) error {
		var err error
		b, err = c.readString()
		return err
	})
	return b, err
}

// FixedBytes consumes a string whose content must be exactly len(dst) bytes
// long and copies it into dst.
func (c *Cursor) FixedBytes(dst []byte) error {
	return c.Try(func(c *Cursor) error {
		b, err := c.readString()
		if err != nil {
			return err
		}
		if len(b) != len(dst) {
			return ErrUnexpectedLength
		}
		copy(dst, b)
		return nil
	})
}

// Uint64 consumes a canonical scalar of at most eight bytes.
func (c *Cursor) Uint64() (uint64, error) {
	var v uint64
	err := c.Try(func(c *Cursor) error {
		b, err := c.readString()
		if err != nil {
			return err
		}
		if len(b) > 8 {
			return ErrOverflow
		}
		if len(b) > 0 && b[0] == 0 {
			return ErrLeadingZero
		}
		v = readUintBE(b)
		return nil
	})
	return v, err
}

// Bool consumes a boolean scalar: 0x80 is false and 0x01 is true.
func (c *Cursor) Bool() (bool, error) {
	var v bool
	err := c.Try(func(c *Cursor) error {
		n, err := c.Uint64()
		if err != nil {
			return err
		}
		switch n {
		case 0:
			v = false
		case 1:
			v = true
		default:
			return ErrOverflow
		}
		return nil
	})
	return v, err
}

// readString consumes a string header and its payload. Callers restore the
// position on error.
func (c *Cursor) readString() ([]byte, error) {
	h, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}
	if h.List {
		return nil, ErrUnexpectedList
	}
	return c.Next(int(h.PayloadLength))
}
