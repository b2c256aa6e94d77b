package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethrawdb "github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/triedb"

	"github.com/eth2030/receiptcodec/rlp"
)

var (
	ErrReceiptProofIndexOOB = errors.New("receipt proof: index out of bounds")
	ErrReceiptProofInvalid  = errors.New("receipt proof: verification failed")
)

// ReceiptProof is a Merkle-Patricia proof that a receipt is stored at a
// given index of a block's receipts trie.
type ReceiptProof struct {
	Index   uint64
	Receipt []byte   // headerless receipt encoding, the trie value
	Nodes   [][]byte // trie nodes on the path from the root
	Root    Hash
}

// receiptTrieKey returns the trie key of the i'th receipt.
func receiptTrieKey(i uint64) []byte {
	return rlp.AppendUint64(nil, i)
}

// buildReceiptTrie inserts every receipt into a fresh in-memory trie.
func buildReceiptTrie(rs Receipts) (*trie.Trie, error) {
	t := trie.NewEmpty(triedb.NewDatabase(gethrawdb.NewMemoryDatabase(), nil))
	for i, r := range rs {
		if err := t.Update(receiptTrieKey(uint64(i)), r.EncodeTo(nil, false)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ProveReceipt builds an inclusion proof for the i'th receipt of a block.
func ProveReceipt(rs Receipts, index int) (*ReceiptProof, error) {
	if index < 0 || index >= len(rs) {
		return nil, fmt.Errorf("%w: %d of %d", ErrReceiptProofIndexOOB, index, len(rs))
	}
	t, err := buildReceiptTrie(rs)
	if err != nil {
		return nil, err
	}
	key := receiptTrieKey(uint64(index))
	proofDB := memorydb.New()
	if err := t.Prove(key, proofDB); err != nil {
		return nil, err
	}
	var nodes [][]byte
	it := proofDB.NewIterator(nil, nil)
	for it.Next() {
		nodes = append(nodes, bytes.Clone(it.Value()))
	}
	it.Release()

	return &ReceiptProof{
		Index:   uint64(index),
		Receipt: rs[index].EncodeTo(nil, false),
		Nodes:   nodes,
		Root:    Hash(t.Hash()),
	}, nil
}

// Verify checks the proof against root and returns the proven receipt.
func (p *ReceiptProof) Verify(root Hash) (*Receipt, error) {
	proofDB := memorydb.New()
	for _, node := range p.Nodes {
		if err := proofDB.Put(keccak256(node), node); err != nil {
			return nil, err
		}
	}
	value, err := trie.VerifyProof(common.Hash(root), receiptTrieKey(p.Index), proofDB)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReceiptProofInvalid, err)
	}
	if value == nil || !bytes.Equal(value, p.Receipt) {
		return nil, ErrReceiptProofInvalid
	}
	return DecodeReceiptBytes(value)
}
