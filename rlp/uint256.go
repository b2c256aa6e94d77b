package rlp

import "github.com/holiman/uint256"

// Uint256Size returns the encoded size of a 256-bit scalar. A nil value
// encodes as zero.
func Uint256Size(v *uint256.Int) int {
	if v == nil || v.LtUint64(EmptyStringCode) {
		return 1
	}
	return 1 + v.ByteLen()
}

// AppendUint256 appends v as a minimal big-endian string.
func AppendUint256(dst []byte, v *uint256.Int) []byte {
	switch {
	case v == nil || v.IsZero():
		return append(dst, EmptyStringCode)
	case v.LtUint64(EmptyStringCode):
		return append(dst, byte(v.Uint64()))
	}
	b := v.Bytes32()
	n := v.ByteLen()
	dst = append(dst, EmptyStringCode+byte(n))
	return append(dst, b[32-n:]...)
}

// Uint256 consumes a canonical scalar of at most 32 bytes.
func (c *Cursor) Uint256() (*uint256.Int, error) {
	v := new(uint256.Int)
	err := c.Try(func(c *Cursor) error {
		b, err := c.readString()
		if err != nil {
			return err
		}
		if len(b) > 32 {
			return ErrOverflow
		}
		if len(b) > 0 && b[0] == 0 {
			return ErrLeadingZero
		}
		v.SetBytes(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
