package types

// Receipt status values as exposed over JSON-RPC.
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt holds the consensus fields of a transaction receipt. Type selects
// the wire framing only; the four remaining fields form the inner RLP list
// for every type.
type Receipt struct {
	Type              TxType
	Success           bool
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log
}

// NewReceipt creates a receipt of the given type. The bloom is left empty;
// use ReceiptBuilder to derive it from logs.
func NewReceipt(txType TxType, success bool, cumulativeGasUsed uint64) *Receipt {
	return &Receipt{
		Type:              txType,
		Success:           success,
		CumulativeGasUsed: cumulativeGasUsed,
	}
}

// Status returns the numeric post-Byzantium status code.
func (r *Receipt) Status() uint64 {
	if r.Success {
		return ReceiptStatusSuccessful
	}
	return ReceiptStatusFailed
}

// Equal compares two receipts on all consensus fields, including the type.
func (r *Receipt) Equal(other *Receipt) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Type != other.Type || r.Success != other.Success ||
		r.CumulativeGasUsed != other.CumulativeGasUsed || r.Bloom != other.Bloom {
		return false
	}
	if len(r.Logs) != len(other.Logs) {
		return false
	}
	for i := range r.Logs {
		if !r.Logs[i].Equal(other.Logs[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the receipt.
func (r *Receipt) Copy() *Receipt {
	if r == nil {
		return nil
	}
	cpy := *r
	if r.Logs != nil {
		cpy.Logs = make([]*Log, len(r.Logs))
		for i, l := range r.Logs {
			cpy.Logs[i] = l.Copy()
		}
	}
	return &cpy
}
