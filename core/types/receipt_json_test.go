package types

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestReceiptJSONRoundTrip(t *testing.T) {
	for name, r := range receiptMatrix() {
		t.Run(name, func(t *testing.T) {
			enc, err := json.Marshal(r)
			if err != nil {
				t.Fatal(err)
			}
			var dec Receipt
			if err := json.Unmarshal(enc, &dec); err != nil {
				t.Fatal(err)
			}
			if !dec.Equal(r) {
				t.Fatalf("round trip mismatch\n%s", enc)
			}
		})
	}
}

func TestReceiptJSONFields(t *testing.T) {
	r := NewReceipt(DynamicFeeTxType, true, 0x5208)
	enc, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(enc, &fields); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"type":              `"0x2"`,
		"status":            `"0x1"`,
		"cumulativeGasUsed": `"0x5208"`,
		"logs":              `[]`,
	}
	for k, v := range want {
		if string(fields[k]) != v {
			t.Errorf("%s = %s, want %s", k, fields[k], v)
		}
	}
	if _, ok := fields["logsBloom"]; !ok {
		t.Error("logsBloom missing")
	}
}

func TestReceiptJSONErrors(t *testing.T) {
	bloom := `"0x` + strings.Repeat("00", BloomLength) + `"`
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"missing status", `{"cumulativeGasUsed":"0x1","logsBloom":` + bloom + `,"logs":[]}`, nil},
		{"missing gas", `{"status":"0x1","logsBloom":` + bloom + `,"logs":[]}`, nil},
		{"missing bloom", `{"status":"0x1","cumulativeGasUsed":"0x1","logs":[]}`, nil},
		{"missing logs", `{"status":"0x1","cumulativeGasUsed":"0x1","logsBloom":` + bloom + `}`, nil},
		{"bad status", `{"status":"0x2","cumulativeGasUsed":"0x1","logsBloom":` + bloom + `,"logs":[]}`, nil},
		{"bad type", `{"type":"0x3","status":"0x1","cumulativeGasUsed":"0x1","logsBloom":` + bloom + `,"logs":[]}`, ErrUnsupportedReceiptType},
		{"short bloom", `{"status":"0x1","cumulativeGasUsed":"0x1","logsBloom":"0x00","logs":[]}`, nil},
		{"log without data", `{"status":"0x1","cumulativeGasUsed":"0x1","logsBloom":` + bloom + `,"logs":[{"address":"0x0000000000000000000000000000000000000011","topics":[]}]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Receipt
			err := json.Unmarshal([]byte(tt.input), &r)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReceiptJSONDefaultsToLegacy(t *testing.T) {
	input := `{"status":"0x0","cumulativeGasUsed":"0x10","logsBloom":"0x` + strings.Repeat("00", BloomLength) + `","logs":[]}`
	var r Receipt
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatal(err)
	}
	if r.Type != LegacyTxType || r.Success || r.CumulativeGasUsed != 16 {
		t.Fatalf("decoded %+v", r)
	}
}
