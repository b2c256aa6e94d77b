package rlp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedString is returned when a list header was required but a
	// string header was found.
	ErrUnexpectedString = errors.New("rlp: expected list, got string")

	// ErrUnexpectedList is returned when a string header was required but a
	// list header was found.
	ErrUnexpectedList = errors.New("rlp: expected string, got list")

	// ErrInputTooShort is returned when a header or payload extends past the
	// end of the input.
	ErrInputTooShort = errors.New("rlp: input too short")

	// ErrLeadingZero is returned when an integer or a long-form size carries
	// leading zero bytes.
	ErrLeadingZero = errors.New("rlp: non-canonical integer (leading zero bytes)")

	// ErrNonCanonicalSize is returned when a size prefix is not in its
	// shortest form.
	ErrNonCanonicalSize = errors.New("rlp: non-canonical size information")

	// ErrOverflow is returned when a decoded integer does not fit the target.
	ErrOverflow = errors.New("rlp: value overflows target type")

	// ErrUnexpectedLength is returned when a fixed-size byte array is decoded
	// from a string of a different length.
	ErrUnexpectedLength = errors.New("rlp: unexpected length for fixed-size value")

	// ErrTrailingBytes is returned when input remains after the value that a
	// caller asked to decode in full.
	ErrTrailingBytes = errors.New("rlp: input contains more than one value")

	// ErrValueTooLarge is returned by the reflection encoder for unsupported
	// kinds.
	ErrValueTooLarge = errors.New("rlp: value too large")
)

// ListLengthMismatchError reports a list whose header-declared payload
// length differs from the number of bytes its fields actually consumed.
type ListLengthMismatchError struct {
	Expected int
	Got      int
}

func (e *ListLengthMismatchError) Error() string {
	return fmt.Sprintf("rlp: list length mismatch: header declares %d bytes, decoded %d", e.Expected, e.Got)
}
