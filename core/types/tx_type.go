package types

import "fmt"

// TxType is the EIP-2718 envelope type of the transaction that produced a
// receipt. It selects the receipt framing only; the receipt fields are the
// same for every type.
type TxType uint8

const (
	LegacyTxType     TxType = 0x00
	AccessListTxType TxType = 0x01 // EIP-2930
	DynamicFeeTxType TxType = 0x02 // EIP-1559
)

func (t TxType) String() string {
	switch t {
	case LegacyTxType:
		return "legacy"
	case AccessListTxType:
		return "eip2930"
	case DynamicFeeTxType:
		return "eip1559"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// Valid reports whether t is a receipt type this package can encode.
func (t TxType) Valid() bool {
	return t <= DynamicFeeTxType
}

// Typed reports whether receipts of type t use the EIP-2718 envelope.
func (t TxType) Typed() bool {
	return t != LegacyTxType
}

// ParseTxType maps an envelope discriminant byte to a typed receipt type.
// Zero is not a valid discriminant: legacy receipts have no envelope.
func ParseTxType(b byte) (TxType, error) {
	switch TxType(b) {
	case AccessListTxType, DynamicFeeTxType:
		return TxType(b), nil
	default:
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnsupportedReceiptType, b)
	}
}

// TxTypeFromName parses the names produced by String, plus the bare
// numeric forms "0", "1" and "2".
func TxTypeFromName(name string) (TxType, error) {
	switch name {
	case "legacy", "0":
		return LegacyTxType, nil
	case "eip2930", "accesslist", "1":
		return AccessListTxType, nil
	case "eip1559", "dynamicfee", "2":
		return DynamicFeeTxType, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedReceiptType, name)
	}
}
