package types

import (
	"bytes"
	"testing"

	"github.com/eth2030/receiptcodec/rlp"
)

func FuzzDecodeReceipt(f *testing.F) {
	for _, r := range receiptMatrix() {
		f.Add(r.EncodeTo(nil, true))
		f.Add(r.EncodeTo(nil, false))
	}
	f.Add([]byte{})
	f.Add([]byte{rlp.EmptyListCode})
	f.Add([]byte{0x80})
	f.Add([]byte{0x02, 0xc0})

	f.Fuzz(func(t *testing.T, data []byte) {
		r, err := DecodeReceiptBytes(data)
		if err != nil {
			return
		}
		// Accepted input is canonical, so it re-encodes to itself in the
		// framing it arrived in.
		framed := data[0] >= rlp.EmptyStringCode && data[0] < rlp.EmptyListCode
		if enc := r.EncodeTo(nil, framed); !bytes.Equal(enc, data) {
			t.Fatalf("decoded %+v from %x, re-encodes to %x", r, data, enc)
		}
		if r.EncodedLength(framed) != len(data) {
			t.Fatalf("EncodedLength(%v) = %d, want %d", framed, r.EncodedLength(framed), len(data))
		}
	})
}
