package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrCumulativeGasOverflow  = errors.New("receipt builder: cumulative gas overflows uint64")
	ErrCumulativeGasDecreased = errors.New("receipt builder: cumulative gas decreased")
)

// ReceiptBuilder constructs a receipt step-by-step after transaction
// execution. It computes the bloom filter on Build.
type ReceiptBuilder struct {
	txType        TxType
	success       bool
	gasUsed       uint64
	cumulativeGas uint64
	logs          []*Log

	hasCumulative bool
}

// NewReceiptBuilder creates a builder for a receipt of the given type.
func NewReceiptBuilder(txType TxType) *ReceiptBuilder {
	return &ReceiptBuilder{txType: txType}
}

// SetSuccess sets the execution outcome.
func (rb *ReceiptBuilder) SetSuccess(success bool) *ReceiptBuilder {
	rb.success = success
	return rb
}

// SetStatus sets the outcome from an EIP-658 status code. Any non-zero
// code counts as success.
func (rb *ReceiptBuilder) SetStatus(status uint64) *ReceiptBuilder {
	rb.success = status != ReceiptStatusFailed
	return rb
}

// SetGasUsed sets the gas consumed by this transaction. It is used as the
// cumulative gas when none is set explicitly.
func (rb *ReceiptBuilder) SetGasUsed(gas uint64) *ReceiptBuilder {
	rb.gasUsed = gas
	return rb
}

// SetCumulativeGasUsed sets the gas used in the block up to and including
// this transaction.
func (rb *ReceiptBuilder) SetCumulativeGasUsed(gas uint64) *ReceiptBuilder {
	rb.cumulativeGas = gas
	rb.hasCumulative = true
	return rb
}

// AddLog appends a log entry. Nil logs are ignored.
func (rb *ReceiptBuilder) AddLog(log *Log) *ReceiptBuilder {
	if log != nil {
		rb.logs = append(rb.logs, log)
	}
	return rb
}

// AddLogs appends several log entries.
func (rb *ReceiptBuilder) AddLogs(logs ...*Log) *ReceiptBuilder {
	for _, l := range logs {
		rb.AddLog(l)
	}
	return rb
}

// Build assembles the receipt. The log list is never nil.
func (rb *ReceiptBuilder) Build() *Receipt {
	cumulative := rb.gasUsed
	if rb.hasCumulative {
		cumulative = rb.cumulativeGas
	}
	logs := make([]*Log, len(rb.logs))
	copy(logs, rb.logs)
	return &Receipt{
		Type:              rb.txType,
		Success:           rb.success,
		CumulativeGasUsed: cumulative,
		Bloom:             LogsBloom(logs),
		Logs:              logs,
	}
}

// BlockReceipts accumulates the receipts of a block in execution order,
// tracking cumulative gas.
type BlockReceipts struct {
	receipts Receipts
	gasUsed  uint64
}

// Add records the outcome of the next transaction and returns its receipt.
func (b *BlockReceipts) Add(txType TxType, success bool, gasUsed uint64, logs ...*Log) (*Receipt, error) {
	if gasUsed > math.MaxUint64-b.gasUsed {
		return nil, fmt.Errorf("%w: %d + %d", ErrCumulativeGasOverflow, b.gasUsed, gasUsed)
	}
	b.gasUsed += gasUsed
	r := NewReceiptBuilder(txType).
		SetSuccess(success).
		SetCumulativeGasUsed(b.gasUsed).
		AddLogs(logs...).
		Build()
	b.receipts = append(b.receipts, r)
	return r, nil
}

// Receipts returns the receipts added so far.
func (b *BlockReceipts) Receipts() Receipts { return b.receipts }

// GasUsed returns the cumulative gas of the last receipt.
func (b *BlockReceipts) GasUsed() uint64 { return b.gasUsed }

// Bloom returns the block bloom over all receipts.
func (b *BlockReceipts) Bloom() Bloom { return CreateBloom(b.receipts) }

// ValidateCumulativeGas checks that cumulative gas never decreases along
// the list.
func ValidateCumulativeGas(rs Receipts) error {
	var prev uint64
	for i, r := range rs {
		if r.CumulativeGasUsed < prev {
			return fmt.Errorf("%w: receipt %d has %d after %d", ErrCumulativeGasDecreased, i, r.CumulativeGasUsed, prev)
		}
		prev = r.CumulativeGasUsed
	}
	return nil
}

// GasUsedAt returns the gas consumed by the i'th transaction of a block,
// derived from consecutive cumulative values.
func GasUsedAt(rs Receipts, i int) uint64 {
	if i == 0 {
		return rs[0].CumulativeGasUsed
	}
	return rs[i].CumulativeGasUsed - rs[i-1].CumulativeGasUsed
}
