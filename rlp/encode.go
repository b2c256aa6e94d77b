package rlp

import (
	"io"
	"math/big"
	"reflect"

	"github.com/holiman/uint256"
)

var (
	encodableType = reflect.TypeOf((*Encodable)(nil)).Elem()
	bigIntType    = reflect.TypeOf(big.Int{})
	uint256Type   = reflect.TypeOf(uint256.Int{})
)

// Encode writes the RLP encoding of val to w.
// val must be a supported type: bool, uint8/16/32/64, *big.Int,
// *uint256.Int, []byte, string, slice/array, struct (exported fields only),
// or a value implementing Encodable.
func Encode(w io.Writer, val interface{}) error {
	b, err := EncodeToBytes(val)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// EncodeToBytes returns the RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	v := reflect.ValueOf(val)
	if e, ok := val.(Encodable); ok && (v.Kind() != reflect.Ptr || !v.IsNil()) {
		return EncodeToBytesOf(e), nil
	}
	return appendValue(nil, v)
}

// AppendValue appends the RLP encoding of val to dst.
func AppendValue(dst []byte, val interface{}) ([]byte, error) {
	return appendValue(dst, reflect.ValueOf(val))
}

func appendValue(dst []byte, v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return append(dst, EmptyStringCode), nil
	}
	if v.Type().Implements(encodableType) {
		if v.Kind() == reflect.Ptr && v.IsNil() {
			return append(dst, EmptyStringCode), nil
		}
		return v.Interface().(Encodable).AppendRLP(dst), nil
	}
	if v.Kind() != reflect.Ptr && v.CanAddr() && reflect.PointerTo(v.Type()).Implements(encodableType) {
		return v.Addr().Interface().(Encodable).AppendRLP(dst), nil
	}

	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			// nil pointer/interface encodes as empty string.
			return append(dst, EmptyStringCode), nil
		}
		v = v.Elem()
		if v.Type().Implements(encodableType) {
			return v.Interface().(Encodable).AppendRLP(dst), nil
		}
	}

	switch v.Type() {
	case bigIntType:
		bi := new(big.Int)
		if v.CanAddr() {
			bi = v.Addr().Interface().(*big.Int)
		} else {
			val := v.Interface().(big.Int)
			bi.Set(&val)
		}
		return appendBigInt(dst, bi)
	case uint256Type:
		val := v.Interface().(uint256.Int)
		return AppendUint256(dst, &val), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return AppendBool(dst, v.Bool()), nil

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		return AppendUint64(dst, v.Uint()), nil

	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		if v.Int() < 0 {
			return nil, ErrValueTooLarge
		}
		return AppendUint64(dst, uint64(v.Int())), nil

	case reflect.String:
		return AppendBytes(dst, []byte(v.String())), nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return AppendBytes(dst, v.Bytes()), nil
		}
		return appendSequence(dst, v.Len(), v.Index)

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return AppendBytes(dst, b), nil
		}
		return appendSequence(dst, v.Len(), v.Index)

	case reflect.Struct:
		return appendStruct(dst, v)

	default:
		return nil, ErrValueTooLarge
	}
}

func appendBigInt(dst []byte, i *big.Int) ([]byte, error) {
	if i.Sign() < 0 {
		return nil, ErrValueTooLarge
	}
	if i.Sign() == 0 {
		return append(dst, EmptyStringCode), nil
	}
	return AppendBytes(dst, i.Bytes()), nil
}

// appendSequence encodes the elements into a scratch buffer first, since
// the list header depends on the payload size.
func appendSequence(dst []byte, n int, elem func(int) reflect.Value) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	for i := 0; i < n; i++ {
		if payload, err = appendValue(payload, elem(i)); err != nil {
			return nil, err
		}
	}
	return append(AppendListHeader(dst, len(payload)), payload...), nil
}

func appendStruct(dst []byte, v reflect.Value) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		if payload, err = appendValue(payload, v.Field(i)); err != nil {
			return nil, err
		}
	}
	return append(AppendListHeader(dst, len(payload)), payload...), nil
}

// WrapList wraps an already-encoded RLP payload in a list header.
func WrapList(payload []byte) []byte {
	out := make([]byte, 0, ListSize(len(payload)))
	return append(AppendListHeader(out, len(payload)), payload...)
}
