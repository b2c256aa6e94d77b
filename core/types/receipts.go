package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/eth2030/receiptcodec/rlp"
)

// Receipts is the list of receipts of one block, in transaction order.
// As an RLP list, typed elements are nested in their framed form.
type Receipts []*Receipt

// EncodingSize implements rlp.Encodable.
func (rs Receipts) EncodingSize() int {
	return rlp.ListSize(rlp.SliceSize(rs))
}

// AppendRLP implements rlp.Encodable.
func (rs Receipts) AppendRLP(dst []byte) []byte {
	return rlp.AppendList(dst, rs)
}

// DecodeRLP implements rlp.Decodable.
func (rs *Receipts) DecodeRLP(c *rlp.Cursor) error {
	var dec Receipts
	err := rlp.DecodeListItems(c, func(c *rlp.Cursor) error {
		r, err := DecodeReceipt(c)
		if err != nil {
			return err
		}
		dec = append(dec, r)
		return nil
	})
	if err != nil {
		return err
	}
	*rs = dec
	return nil
}

// Len returns the number of receipts in the list.
func (rs Receipts) Len() int { return len(rs) }

// EncodeIndex writes the headerless encoding of the i'th receipt to w, the
// form stored in the receipts trie.
func (rs Receipts) EncodeIndex(i int, w *bytes.Buffer) {
	w.Write(rs[i].EncodeTo(w.AvailableBuffer(), false))
}

// Bloom returns the union of the receipts' blooms, the block header bloom.
func (rs Receipts) Bloom() Bloom {
	return CreateBloom(rs)
}

// DeriveReceiptsRoot computes the receipts trie root: each receipt's
// headerless encoding keyed by the RLP encoding of its index.
func DeriveReceiptsRoot(rs Receipts) Hash {
	root := gethtypes.DeriveSha(rs, trie.NewStackTrie(nil))
	return Hash(root)
}

// EmptyReceiptsRoot is the root of an empty receipts trie.
var EmptyReceiptsRoot = Hash(common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"))
