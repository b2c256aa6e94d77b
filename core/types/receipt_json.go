package types

import (
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MarshalJSON marshals a log with hex-encoded data.
func (l Log) MarshalJSON() ([]byte, error) {
	type Log struct {
		Address Address       `json:"address"`
		Topics  []Hash        `json:"topics"`
		Data    hexutil.Bytes `json:"data"`
	}
	enc := Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	if enc.Topics == nil {
		enc.Topics = []Hash{}
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals a log. All fields are required.
func (l *Log) UnmarshalJSON(input []byte) error {
	type Log struct {
		Address *Address       `json:"address"`
		Topics  []Hash         `json:"topics"`
		Data    *hexutil.Bytes `json:"data"`
	}
	var dec Log
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Address == nil {
		return errors.New("missing required field 'address' for Log")
	}
	if dec.Topics == nil {
		return errors.New("missing required field 'topics' for Log")
	}
	if dec.Data == nil {
		return errors.New("missing required field 'data' for Log")
	}
	l.Address = *dec.Address
	l.Topics = dec.Topics
	l.Data = *dec.Data
	return nil
}

// MarshalJSON marshals a receipt with hex quantities, using the field names
// of the eth_getTransactionReceipt response.
func (r Receipt) MarshalJSON() ([]byte, error) {
	type Receipt struct {
		Type              hexutil.Uint64 `json:"type"`
		Status            hexutil.Uint64 `json:"status"`
		CumulativeGasUsed hexutil.Uint64 `json:"cumulativeGasUsed"`
		Bloom             Bloom          `json:"logsBloom"`
		Logs              []*Log         `json:"logs"`
	}
	enc := Receipt{
		Type:              hexutil.Uint64(r.Type),
		Status:            hexutil.Uint64(r.Status()),
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		Bloom:             r.Bloom,
		Logs:              r.Logs,
	}
	if enc.Logs == nil {
		enc.Logs = []*Log{}
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals a receipt. The type defaults to legacy; all other
// fields are required.
func (r *Receipt) UnmarshalJSON(input []byte) error {
	type Receipt struct {
		Type              *hexutil.Uint64 `json:"type"`
		Status            *hexutil.Uint64 `json:"status"`
		CumulativeGasUsed *hexutil.Uint64 `json:"cumulativeGasUsed"`
		Bloom             *Bloom          `json:"logsBloom"`
		Logs              []*Log          `json:"logs"`
	}
	var dec Receipt
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	var txType TxType
	if dec.Type != nil {
		if *dec.Type > hexutil.Uint64(DynamicFeeTxType) {
			return ErrUnsupportedReceiptType
		}
		txType = TxType(*dec.Type)
	}
	if dec.Status == nil {
		return errors.New("missing required field 'status' for Receipt")
	}
	if uint64(*dec.Status) > ReceiptStatusSuccessful {
		return errors.New("invalid receipt status")
	}
	if dec.CumulativeGasUsed == nil {
		return errors.New("missing required field 'cumulativeGasUsed' for Receipt")
	}
	if dec.Bloom == nil {
		return errors.New("missing required field 'logsBloom' for Receipt")
	}
	if dec.Logs == nil {
		return errors.New("missing required field 'logs' for Receipt")
	}
	r.Type = txType
	r.Success = uint64(*dec.Status) == ReceiptStatusSuccessful
	r.CumulativeGasUsed = uint64(*dec.CumulativeGasUsed)
	r.Bloom = *dec.Bloom
	r.Logs = dec.Logs
	return nil
}
