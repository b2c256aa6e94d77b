package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/eth2030/receiptcodec/rlp"
)

// BloomBitLength is the number of bits in a Bloom.
const BloomBitLength = 8 * BloomLength

// Bloom is the 2048-bit log bloom of a receipt or block.
type Bloom [BloomLength]byte

// bloomBits returns, for each of the three bits data sets, the byte index
// in a Bloom and the mask within that byte. Each bit is the low 11 bits of
// one of the first three big-endian uint16 words of keccak256(data); bit 0
// is the least significant bit of the last byte.
func bloomBits(data []byte) (idx [3]int, mask [3]byte) {
	h := keccak256(data)
	for i := range idx {
		bit := binary.BigEndian.Uint16(h[2*i:]) & (BloomBitLength - 1)
		idx[i] = BloomLength - 1 - int(bit/8)
		mask[i] = 1 << (bit % 8)
	}
	return idx, mask
}

// BloomAdd sets the bits of data in bloom.
func BloomAdd(bloom *Bloom, data []byte) {
	idx, mask := bloomBits(data)
	for i := range idx {
		bloom[idx[i]] |= mask[i]
	}
}

// BloomContains reports whether all bits of data are set. False positives
// are possible, false negatives are not.
func BloomContains(bloom Bloom, data []byte) bool {
	idx, mask := bloomBits(data)
	for i := range idx {
		if bloom[idx[i]]&mask[i] == 0 {
			return false
		}
	}
	return true
}

// LogsBloom is the bloom of a receipt: every log address and topic.
func LogsBloom(logs []*Log) (bloom Bloom) {
	for _, l := range logs {
		bloom.Add(l.Address[:])
		for _, topic := range l.Topics {
			bloom.Add(topic[:])
		}
	}
	return bloom
}

// CreateBloom is the block bloom: the union of the receipt blooms.
func CreateBloom(receipts []*Receipt) (bloom Bloom) {
	for _, r := range receipts {
		bloom.Or(r.Bloom)
	}
	return bloom
}

// BytesToBloom keeps the last 256 bytes of b, zero-padding on the left.
func BytesToBloom(b []byte) (bloom Bloom) {
	bloom.SetBytes(b)
	return bloom
}

func (b Bloom) Bytes() []byte { return b[:] }

// SetBytes overwrites b with data, right-aligned.
func (b *Bloom) SetBytes(data []byte) {
	*b = Bloom{}
	copyRightAligned(b[:], data)
}

// Add inserts data into the bloom filter.
func (b *Bloom) Add(data []byte) { BloomAdd(b, data) }

// Test reports whether data might be present in the bloom filter.
func (b Bloom) Test(data []byte) bool { return BloomContains(b, data) }

// Or merges other into b.
func (b *Bloom) Or(other Bloom) {
	for i := range b {
		b[i] |= other[i]
	}
}

func (b Bloom) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

func (b *Bloom) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Bloom", input, b[:])
}

// EncodingSize implements rlp.Encodable: a 256-byte string behind a
// three-byte long-form header.
func (b Bloom) EncodingSize() int { return rlp.HeaderSize(BloomLength) + BloomLength }

// AppendRLP implements rlp.Encodable.
func (b Bloom) AppendRLP(dst []byte) []byte { return rlp.AppendBytes(dst, b[:]) }

// DecodeRLP implements rlp.Decodable.
func (b *Bloom) DecodeRLP(c *rlp.Cursor) error { return c.FixedBytes(b[:]) }
