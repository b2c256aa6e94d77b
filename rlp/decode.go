package rlp

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"reflect"
)

// Kind represents the type of an RLP value.
type Kind int

const (
	Byte   Kind = iota // Single byte in [0x00, 0x7f].
	String             // RLP string (including empty string).
	List               // RLP list.
)

func (k Kind) String() string {
	switch k {
	case Byte:
		return "Byte"
	case String:
		return "String"
	case List:
		return "List"
	default:
		return "Unknown"
	}
}

var (
	decodableType = reflect.TypeOf((*Decodable)(nil)).Elem()

	errDecodeIntoNil = errors.New("rlp: decode target must be a non-nil pointer")
)

// Decode reads all of r and decodes it into the value pointed to by val.
func Decode(r io.Reader, val interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return DecodeBytes(data, val)
}

// DecodeBytes decodes b into the value pointed to by val. The input must
// hold exactly one value.
func DecodeBytes(b []byte, val interface{}) error {
	c := NewCursor(b)
	if err := decodeValue(c, reflect.ValueOf(val)); err != nil {
		return err
	}
	if !c.Empty() {
		return ErrTrailingBytes
	}
	return nil
}

// Split returns the kind of the first item in b, its payload and the bytes
// that follow it.
func Split(b []byte) (k Kind, content, rest []byte, err error) {
	c := NewCursor(b)
	first, err := c.Peek()
	if err != nil {
		return 0, nil, b, err
	}
	h, err := DecodeHeader(c)
	if err != nil {
		return 0, nil, b, err
	}
	switch {
	case first < EmptyStringCode:
		k = Byte
	case h.List:
		k = List
	default:
		k = String
	}
	if content, err = c.Next(int(h.PayloadLength)); err != nil {
		return 0, nil, b, err
	}
	return k, content, c.Remaining(), nil
}

// CountValues counts the number of encoded values in b.
func CountValues(b []byte) (int, error) {
	c := NewCursor(b)
	n := 0
	for !c.Empty() {
		if _, err := c.Raw(); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func decodeValue(c *Cursor, v reflect.Value) error {
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errDecodeIntoNil
	}
	if v.Type().Implements(decodableType) {
		return v.Interface().(Decodable).DecodeRLP(c)
	}
	return decodeInto(c, v.Elem())
}

func decodeInto(c *Cursor, v reflect.Value) error {
	if v.CanAddr() && reflect.PointerTo(v.Type()).Implements(decodableType) {
		return v.Addr().Interface().(Decodable).DecodeRLP(c)
	}
	switch v.Type() {
	case bigIntType:
		bi, err := decodeBigInt(c)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*bi))
		return nil
	case uint256Type:
		u, err := c.Uint256()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*u))
		return nil
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return decodeInto(c, v.Elem())
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := c.Bool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return c.Try(func(c *Cursor) error {
			u, err := c.Uint64()
			if err != nil {
				return err
			}
			if v.OverflowUint(u) {
				return ErrOverflow
			}
			v.SetUint(u)
			return nil
		})

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return c.Try(func(c *Cursor) error {
			u, err := c.Uint64()
			if err != nil {
				return err
			}
			if u > 1<<63-1 || v.OverflowInt(int64(u)) {
				return ErrOverflow
			}
			v.SetInt(int64(u))
			return nil
		})

	case reflect.String:
		b, err := c.Bytes()
		if err != nil {
			return err
		}
		v.SetString(string(b))
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := c.Bytes()
			if err != nil {
				return err
			}
			v.SetBytes(bytes.Clone(b))
			return nil
		}
		return decodeSlice(c, v)

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, v.Len())
			if err := c.FixedBytes(buf); err != nil {
				return err
			}
			reflect.Copy(v, reflect.ValueOf(buf))
			return nil
		}
		return decodeArray(c, v)

	case reflect.Struct:
		return decodeStruct(c, v)

	default:
		return ErrValueTooLarge
	}
}

func decodeBigInt(c *Cursor) (*big.Int, error) {
	var bi *big.Int
	err := c.Try(func(c *Cursor) error {
		b, err := c.Bytes()
		if err != nil {
			return err
		}
		if len(b) > 0 && b[0] == 0 {
			return ErrLeadingZero
		}
		bi = new(big.Int).SetBytes(b)
		return nil
	})
	return bi, err
}

func decodeSlice(c *Cursor, v reflect.Value) error {
	out := reflect.MakeSlice(v.Type(), 0, 0)
	err := DecodeListItems(c, func(c *Cursor) error {
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := decodeInto(c, elem); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
		return nil
	})
	if err != nil {
		return err
	}
	v.Set(out)
	return nil
}

func decodeArray(c *Cursor, v reflect.Value) error {
	return DecodeList(c, func(c *Cursor) error {
		for i := 0; i < v.Len(); i++ {
			if err := decodeInto(c, v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	})
}

func decodeStruct(c *Cursor, v reflect.Value) error {
	return DecodeList(c, func(c *Cursor) error {
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			if err := decodeInto(c, v.Field(i)); err != nil {
				return err
			}
		}
		return nil
	})
}
