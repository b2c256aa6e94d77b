package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/eth2030/receiptcodec/core/types"
	"github.com/eth2030/receiptcodec/rlp"
)

// referenceReceiptHex is a failed legacy receipt with cumulative gas 1, an
// empty bloom and one log.
var referenceReceiptHex = "0xf901668001b90100" + strings.Repeat("00", types.BloomLength) +
	"f85ff85d940000000000000000000000000000000000000011f842" +
	"a0000000000000000000000000000000000000000000000000000000000000dead" +
	"a0000000000000000000000000000000000000000000000000000000000000beef" +
	"830100ff"

const (
	testAddr  = "0x0000000000000000000000000000000000000011"
	testTopic = "0x000000000000000000000000000000000000000000000000000000000000dead"
	testHash  = "0x00000000000000000000000000000000000000000000000000000000000000aa"
)

// runTool runs the tool and returns stdout, stderr and the exit code.
func runTool(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"receipttool", "--verbosity", "0"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, errOut, code := runTool(t, stdin, args...)
	require.Equal(t, 0, code, "stderr: %s", errOut)
	return out
}

func testReceiptList(t *testing.T) (types.Receipts, string) {
	t.Helper()
	var b types.BlockReceipts
	_, err := b.Add(types.LegacyTxType, true, 21000)
	require.NoError(t, err)
	_, err = b.Add(types.AccessListTxType, false, 30000,
		types.NewLog(types.HexToAddress(testAddr), []types.Hash{types.HexToHash(testTopic)}, []byte{0x01}))
	require.NoError(t, err)
	_, err = b.Add(types.DynamicFeeTxType, true, 50000,
		types.NewLog(types.HexToAddress("0x22"), nil, nil))
	require.NoError(t, err)
	return b.Receipts(), hexutil.Encode(rlp.EncodeToBytesOf(b.Receipts()))
}

func TestDecodeReferenceReceipt(t *testing.T) {
	out := mustRun(t, "", "decode", referenceReceiptHex)

	var r types.Receipt
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	require.Equal(t, types.LegacyTxType, r.Type)
	require.False(t, r.Success)
	require.Equal(t, uint64(1), r.CumulativeGasUsed)
	require.Len(t, r.Logs, 1)
	require.Equal(t, types.HexToAddress(testAddr), r.Logs[0].Address)

	// The JSON output encodes back to the same bytes.
	enc := mustRun(t, out, "encode", "-")
	require.Equal(t, referenceReceiptHex, strings.TrimSpace(enc))
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{
			"nested scalars",
			"0xcc01825208c4800081ff820001",
			`list 12
  byte 0x01 = 1
  string 0x5208 = 21000
  list 4
    string 0x = 0
    byte 0x00
    string 0xff = 255
  string 0x0001
`,
		},
		{"typed envelope", "0x02c0", "byte 0x02 = 2\nlist 0\n"},
		{
			"wide scalar",
			"0xa0" + strings.Repeat("ff", 32),
			"string 0x" + strings.Repeat("ff", 32) + " = " + uint256.MustFromHex("0x"+strings.Repeat("f", 64)).Dec() + "\n",
		},
		{"oversized scalar", "0xa1" + strings.Repeat("01", 33), "string 0x" + strings.Repeat("01", 33) + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, mustRun(t, "", "inspect", tt.in))
		})
	}

	// The bloom is too wide for a scalar; the log list is empty.
	out := mustRun(t, "", "inspect", strings.TrimSpace(mustRun(t, "", "encode", "--status", "1", "--gas", "21000")))
	require.Equal(t, "list 264\n  byte 0x01 = 1\n  string 0x5208 = 21000\n  string 0x"+strings.Repeat("00", types.BloomLength)+"\n  list 0\n", out)

	for _, in := range []string{"0xc3", "0x8100", "0xzz"} {
		_, errOut, code := runTool(t, "", "inspect", in)
		require.Equal(t, 1, code, in)
		require.Contains(t, errOut, "Error:")
	}
}

func TestEncodeFromFlags(t *testing.T) {
	out := mustRun(t, "", "encode",
		"--type", "eip1559", "--status", "1", "--gas", "21000",
		"--log", testAddr+":"+testTopic+":0x0100ff")
	enc, err := hexutil.Decode(strings.TrimSpace(out))
	require.NoError(t, err)

	r, err := types.DecodeReceiptBytes(enc)
	require.NoError(t, err)
	require.Equal(t, types.DynamicFeeTxType, r.Type)
	require.True(t, r.Success)
	require.Equal(t, uint64(21000), r.CumulativeGasUsed)
	require.Len(t, r.Logs, 1)
	require.Equal(t, []byte{0x01, 0x00, 0xff}, r.Logs[0].Data)
	require.Equal(t, types.LogsBloom(r.Logs), r.Bloom)
	require.Equal(t, r.EncodeTo(nil, true), enc)

	bare := mustRun(t, "", "encode", "--type", "eip1559", "--status", "1", "--gas", "21000",
		"--log", testAddr+":"+testTopic+":0x0100ff", "--no-header")
	require.Equal(t, hexutil.Encode(r.EncodeTo(nil, false)), strings.TrimSpace(bare))
	require.Equal(t, "0x02", strings.TrimSpace(bare)[:4])
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown type", []string{"encode", "--type", "blob"}},
		{"bad status", []string{"encode", "--status", "2"}},
		{"bad log address", []string{"encode", "--log", "0x11"}},
		{"bad log topic", []string{"encode", "--log", testAddr + ":0xdead"}},
		{"missing json file", []string{"encode", filepath.Join(t.TempDir(), "missing.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runTool(t, "", tt.args...)
			require.Equal(t, 1, code)
			require.Contains(t, errOut, "Error:")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"decode"}, errNoInput.Error()},
		{"bad hex", []string{"decode", "0xzz"}, "invalid"},
		{"empty list receipt", []string{"decode", "0xc0"}, types.ErrEmptyListReceipt.Error()},
		{"unknown type", []string{"decode", "0x03c0"}, types.ErrUnsupportedReceiptType.Error()},
		{"trailing bytes", []string{"decode", referenceReceiptHex + "00"}, rlp.ErrTrailingBytes.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runTool(t, "", tt.args...)
			require.Equal(t, 1, code)
			require.Contains(t, errOut, tt.want)
		})
	}
}

func TestDecodeList(t *testing.T) {
	rs, list := testReceiptList(t)
	out := mustRun(t, list, "decode", "--list", "-")

	var dec []*types.Receipt
	require.NoError(t, json.Unmarshal([]byte(out), &dec))
	require.Len(t, dec, len(rs))
	for i := range rs {
		require.True(t, rs[i].Equal(dec[i]), "receipt %d", i)
	}

	out = mustRun(t, "", "decode", "--list", "0xc0")
	require.JSONEq(t, "[]", out)
}

func TestRoot(t *testing.T) {
	rs, list := testReceiptList(t)
	out := mustRun(t, "", "root", list)

	var res struct {
		Root  types.Hash  `json:"root"`
		Bloom types.Bloom `json:"logsBloom"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, types.DeriveReceiptsRoot(rs), res.Root)
	require.Equal(t, rs.Bloom(), res.Bloom)
	require.Equal(t, 3, res.Count)

	out = mustRun(t, "", "root", "0xc0")
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, types.EmptyReceiptsRoot, res.Root)
}

func TestProve(t *testing.T) {
	rs, list := testReceiptList(t)
	out := mustRun(t, "", "prove", "--index", "1", list)

	var res proofJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, hexutil.Uint64(1), res.Index)
	require.Equal(t, types.DeriveReceiptsRoot(rs), res.Root)
	require.NotEmpty(t, res.Proof)

	p := &types.ReceiptProof{Index: uint64(res.Index), Receipt: res.Receipt, Root: res.Root}
	for _, n := range res.Proof {
		p.Nodes = append(p.Nodes, n)
	}
	got, err := p.Verify(res.Root)
	require.NoError(t, err)
	require.True(t, got.Equal(rs[1]))

	_, errOut, code := runTool(t, "", "prove", "--index", "3", list)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, types.ErrReceiptProofIndexOOB.Error())
}

func TestFilter(t *testing.T) {
	_, list := testReceiptList(t)

	out := mustRun(t, "", "filter", "--address", testAddr, list)
	var res []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)
	require.JSONEq(t, `"0x1"`, string(res[0]["transactionIndex"]))
	require.JSONEq(t, `"0x0"`, string(res[0]["logIndex"]))
	require.JSONEq(t, `"`+testAddr+`"`, string(res[0]["address"]))

	out = mustRun(t, "", "filter", "--topic", testHash+","+testTopic, list)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 1)

	out = mustRun(t, "", "filter", "--topic", "", "--topic", testTopic, list)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Empty(t, res)

	out = mustRun(t, "", "filter", list)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res, 2)
	require.JSONEq(t, `"0x2"`, string(res[1]["transactionIndex"]))
	require.JSONEq(t, `"0x1"`, string(res[1]["logIndex"]))

	_, _, code := runTool(t, "", "filter", "--address", "0x11", list)
	require.Equal(t, 1, code)
}

func TestDatabaseCommands(t *testing.T) {
	datadir := t.TempDir()
	rs, list := testReceiptList(t)
	block := []string{"--number", "7", "--hash", testHash}
	db := func(sub string, extra ...string) []string {
		return append(append([]string{"--datadir", datadir, "db", sub}, block...), extra...)
	}

	mustRun(t, "", db("write", list)...)

	out := mustRun(t, "", "--datadir", datadir, "db", "list")
	require.Equal(t, "7 "+testHash+" "+itoa(len(rlp.EncodeToBytesOf(rs)))+"\n", out)

	readBack := func() {
		t.Helper()
		out := mustRun(t, "", db("read")...)
		var dec []*types.Receipt
		require.NoError(t, json.Unmarshal([]byte(out), &dec))
		require.Len(t, dec, len(rs))
		for i := range rs {
			require.True(t, rs[i].Equal(dec[i]), "receipt %d", i)
		}
	}
	readBack()

	// Freezing requires the ancient table to continue from its head.
	_, errOut, code := runTool(t, "", db("freeze")...)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "sequential")

	for n := 0; n < 7; n++ {
		hash := hexutil.Encode(types.BytesToHash([]byte{byte(n)}).Bytes())
		mustRun(t, "", "--datadir", datadir, "db", "write", "--number", itoa(n), "--hash", hash, "0xc0")
		mustRun(t, "", "--datadir", datadir, "db", "freeze", "--number", itoa(n), "--hash", hash)
	}
	mustRun(t, "", db("freeze")...)

	out = mustRun(t, "", "--datadir", datadir, "db", "list")
	require.Empty(t, out)
	readBack()

	// Block 7 is frozen under testHash only.
	otherHash := hexutil.Encode(types.BytesToHash([]byte{0xee}).Bytes())
	_, errOut, code = runTool(t, "", "--datadir", datadir, "db", "read", "--number", "7", "--hash", otherHash)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "not found")

	stats := mustRun(t, "", "--datadir", datadir, "db", "stats")
	require.Contains(t, stats, "ancient.items       8")
	require.Contains(t, stats, "ancient.head.marker 8")

	mustRun(t, "", "--datadir", datadir, "db", "compact")

	_, _, code = runTool(t, "", "--datadir", datadir, "db", "read", "--number", "9", "--hash", testHash)
	require.Equal(t, 1, code)
}

func TestDatabaseDelete(t *testing.T) {
	datadir := t.TempDir()
	_, list := testReceiptList(t)
	mustRun(t, "", "--datadir", datadir, "db", "write", "--number", "1", "--hash", testHash, list)
	mustRun(t, "", "--datadir", datadir, "db", "delete", "--number", "1", "--hash", testHash)
	require.Empty(t, mustRun(t, "", "--datadir", datadir, "db", "list"))

	_, _, code := runTool(t, "", "--datadir", datadir, "db", "write", "--number", "1", "--hash", "0x12", list)
	require.Equal(t, 1, code)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `DataDir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"
Verbosity = 2
Cache = 128

[Ancient]
Compress = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadConfig(path, &cfg))
	require.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	require.Equal(t, 2, cfg.Verbosity)
	require.Equal(t, 128, cfg.Cache)
	require.Equal(t, 64, cfg.Handles)
	require.False(t, cfg.Ancient.Compress)
	require.Equal(t, filepath.Join(dir, "data", "ancient"), cfg.AncientDir())
	require.Equal(t, filepath.Join(dir, "data", "chaindata"), cfg.ChainDataDir())

	// Flags override the file.
	out := mustRun(t, "", "--config", path, "--datadir", filepath.Join(dir, "other"), "dumpconfig")
	var dumped Config
	require.NoError(t, tomlSettings.Unmarshal([]byte(out), &dumped))
	require.Equal(t, filepath.Join(dir, "other"), dumped.DataDir)
	require.Equal(t, 0, dumped.Verbosity)
	require.Equal(t, 128, dumped.Cache)
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	require.ErrorIs(t, LoadConfig(filepath.Join(dir, "missing.toml"), &cfg), ErrConfigFileNotFound)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("Unknown = 1\n"), 0o644))
	require.Error(t, LoadConfig(bad, &cfg))

	_, errOut, code := runTool(t, "", "--config", bad, "dumpconfig")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "Unknown")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty datadir", func(c *Config) { c.DataDir = "" }},
		{"verbosity", func(c *Config) { c.Verbosity = 6 }},
		{"negative cache", func(c *Config) { c.Cache = -1 }},
		{"metrics without addr", func(c *Config) { c.Metrics = MetricsConfig{Enabled: true} }},
	}
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestMetricsServer(t *testing.T) {
	_, list := testReceiptList(t)
	mustRun(t, "", "--metrics", "--metrics.addr", "127.0.0.1:0", "root", list)

	_, errOut, code := runTool(t, "", "--metrics", "--metrics.addr", "", "root", list)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, ErrInvalidConfig.Error())
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
