// Package types defines the receipt data structures and their consensus
// encodings.
package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/receiptcodec/rlp"
)

const (
	HashLength    = 32
	AddressLength = 20
	BloomLength   = 256
)

// Hash is a 32-byte keccak256 digest, used for log topics and trie roots.
type Hash [HashLength]byte

// Address is a 20-byte account address, the emitter of a log.
type Address [AddressLength]byte

// copyRightAligned copies the low len(dst) bytes of b into the end of dst,
// leaving leading bytes untouched.
func copyRightAligned(dst, b []byte) {
	if len(b) > len(dst) {
		b = b[len(b)-len(dst):]
	}
	copy(dst[len(dst)-len(b):], b)
}

// BytesToHash keeps the last 32 bytes of b, zero-padding on the left.
func BytesToHash(b []byte) (h Hash) {
	h.SetBytes(b)
	return h
}

// HexToHash parses s with or without 0x, like BytesToHash.
func HexToHash(s string) Hash { return BytesToHash(common.FromHex(s)) }

func (h *Hash) SetBytes(b []byte) { copyRightAligned(h[:], b) }

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) Hex() string    { return hexutil.Encode(h[:]) }
func (h Hash) String() string { return h.Hex() }
func (h Hash) IsZero() bool   { return h == Hash{} }

// MarshalText and UnmarshalText use 0x-prefixed hex; decoding requires
// exactly 32 bytes.
func (h Hash) MarshalText() ([]byte, error) { return hexutil.Bytes(h[:]).MarshalText() }
func (h *Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash", input, h[:])
}

// Hashes are RLP strings of fixed length.
func (h Hash) EncodingSize() int              { return 1 + HashLength }
func (h Hash) AppendRLP(dst []byte) []byte    { return rlp.AppendBytes(dst, h[:]) }
func (h *Hash) DecodeRLP(c *rlp.Cursor) error { return c.FixedBytes(h[:]) }

// BytesToAddress keeps the last 20 bytes of b, zero-padding on the left.
func BytesToAddress(b []byte) (a Address) {
	a.SetBytes(b)
	return a
}

// HexToAddress parses s with or without 0x, like BytesToAddress.
func HexToAddress(s string) Address { return BytesToAddress(common.FromHex(s)) }

func (a *Address) SetBytes(b []byte) { copyRightAligned(a[:], b) }

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) Hex() string    { return hexutil.Encode(a[:]) }
func (a Address) String() string { return a.Hex() }
func (a Address) IsZero() bool   { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) { return hexutil.Bytes(a[:]).MarshalText() }
func (a *Address) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Address", input, a[:])
}

func (a Address) EncodingSize() int              { return 1 + AddressLength }
func (a Address) AppendRLP(dst []byte) []byte    { return rlp.AppendBytes(dst, a[:]) }
func (a *Address) DecodeRLP(c *rlp.Cursor) error { return c.FixedBytes(a[:]) }

// keccak256 returns the legacy Keccak-256 digest of data.
func keccak256(data []byte) []byte {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	return d.Sum(nil)
}
