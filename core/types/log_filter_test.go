package types

import "testing"

func filterTestReceipts() Receipts {
	var b BlockReceipts
	logs := testLogs()
	b.Add(LegacyTxType, true, 1000, logs[0])
	b.Add(AccessListTxType, true, 1000)
	b.Add(DynamicFeeTxType, false, 1000, logs[1], logs[2])
	b.Add(DynamicFeeTxType, true, 1000, logs[0], logs[2])
	return b.Receipts()
}

func TestLogFilterMatch(t *testing.T) {
	l := NewLog(HexToAddress("0x11"), []Hash{HexToHash("0xdead"), HexToHash("0xbeef")}, nil)
	tests := []struct {
		name   string
		filter LogFilter
		want   bool
	}{
		{"empty", LogFilter{}, true},
		{"address", LogFilter{Addresses: []Address{HexToAddress("0x11")}}, true},
		{"other address", LogFilter{Addresses: []Address{HexToAddress("0x12")}}, false},
		{"any of addresses", LogFilter{Addresses: []Address{HexToAddress("0x12"), HexToAddress("0x11")}}, true},
		{"first topic", LogFilter{Topics: [][]Hash{{HexToHash("0xdead")}}}, true},
		{"wildcard then topic", LogFilter{Topics: [][]Hash{nil, {HexToHash("0xbeef")}}}, true},
		{"topic in wrong position", LogFilter{Topics: [][]Hash{{HexToHash("0xbeef")}}}, false},
		{"topic alternatives", LogFilter{Topics: [][]Hash{{HexToHash("0x01"), HexToHash("0xdead")}}}, true},
		{"too many positions", LogFilter{Topics: [][]Hash{nil, nil, {HexToHash("0xdead")}}}, false},
		{"trailing wildcard", LogFilter{Topics: [][]Hash{nil, nil, nil}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(l); got != tt.want {
				t.Fatalf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterLogs(t *testing.T) {
	rs := filterTestReceipts()

	all := FilterLogs(rs, LogFilter{})
	if len(all) != 5 {
		t.Fatalf("got %d logs, want 5", len(all))
	}
	for i, fl := range all {
		if fl.LogIndex != uint(i) {
			t.Errorf("log %d has block index %d", i, fl.LogIndex)
		}
	}

	got := FilterLogs(rs, LogFilter{Addresses: []Address{HexToAddress("0x33")}})
	if len(got) != 2 {
		t.Fatalf("got %d logs for 0x33, want 2", len(got))
	}
	if got[0].TxIndex != 2 || got[0].LogIndex != 2 {
		t.Errorf("first match at tx %d log %d, want tx 2 log 2", got[0].TxIndex, got[0].LogIndex)
	}
	if got[1].TxIndex != 3 || got[1].LogIndex != 4 {
		t.Errorf("second match at tx %d log %d, want tx 3 log 4", got[1].TxIndex, got[1].LogIndex)
	}

	got = FilterLogs(rs, LogFilter{Topics: [][]Hash{{HexToHash("0xdead")}}})
	if len(got) != 2 || got[0].TxIndex != 0 || got[1].TxIndex != 3 {
		t.Fatalf("topic filter matched %+v", got)
	}

	if got := FilterLogs(rs, LogFilter{Addresses: []Address{HexToAddress("0x44")}}); len(got) != 0 {
		t.Fatalf("absent address matched %d logs", len(got))
	}
}

func TestLogFilterBloom(t *testing.T) {
	r := NewReceiptBuilder(LegacyTxType).AddLogs(testLogs()...).Build()
	f := LogFilter{Addresses: []Address{HexToAddress("0x22")}}
	if !f.bloomMatches(r.Bloom) {
		t.Fatal("bloom rejects present address")
	}
	if f.bloomMatches(Bloom{}) {
		t.Fatal("empty bloom accepted")
	}
	empty := LogFilter{}
	if !empty.bloomMatches(Bloom{}) {
		t.Fatal("empty filter must accept any bloom")
	}
}
