package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/eth2030/receiptcodec/core/types"
	"github.com/eth2030/receiptcodec/rlp"
)

var codec = types.NewReceiptCodec()

var errNoInput = errors.New("no input given")

func encodeCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Build a receipt and print its consensus encoding as hex",
		ArgsUsage: "[receipt.json | -]",
		Description: `Without arguments the receipt is built from the flags. With a file
argument (or - for stdin) it is read as eth_getTransactionReceipt JSON.`,
		Flags: []cli.Flag{TypeFlag, StatusFlag, GasFlag, LogFlag, NoHeaderFlag},
		Action: func(ctx *cli.Context) error {
			var (
				r   *types.Receipt
				err error
			)
			if ctx.NArg() > 0 {
				r, err = receiptFromJSON(ctx)
			} else {
				r, err = receiptFromFlags(ctx)
			}
			if err != nil {
				return err
			}
			enc, err := codec.EncodeReceipt(r)
			if err != nil {
				return err
			}
			if ctx.Bool(NoHeaderFlag.Name) {
				enc = r.EncodeTo(nil, false)
			}
			env.log.Debug("Encoded receipt", "type", r.Type, "size", len(enc))
			_, err = fmt.Fprintln(ctx.App.Writer, hexutil.Encode(enc))
			return err
		},
	}
}

func receiptFromFlags(ctx *cli.Context) (*types.Receipt, error) {
	txType, err := types.TxTypeFromName(ctx.String(TypeFlag.Name))
	if err != nil {
		return nil, err
	}
	status := ctx.Uint64(StatusFlag.Name)
	if status > types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("invalid status %d", status)
	}
	rb := types.NewReceiptBuilder(txType).
		SetStatus(status).
		SetCumulativeGasUsed(ctx.Uint64(GasFlag.Name))
	for _, arg := range ctx.StringSlice(LogFlag.Name) {
		l, err := parseLog(arg)
		if err != nil {
			return nil, err
		}
		rb.AddLog(l)
	}
	return rb.Build(), nil
}

func receiptFromJSON(ctx *cli.Context) (*types.Receipt, error) {
	data, err := readInput(ctx, ctx.Args().First())
	if err != nil {
		return nil, err
	}
	r := new(types.Receipt)
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("invalid receipt JSON: %w", err)
	}
	return r, nil
}

// parseLog parses address[:topic,topic...[:data]].
func parseLog(arg string) (*types.Log, error) {
	parts := strings.SplitN(arg, ":", 3)
	addr, err := decodeHex(parts[0])
	if err != nil || len(addr) != types.AddressLength {
		return nil, fmt.Errorf("invalid log address %q", parts[0])
	}
	var topics []types.Hash
	if len(parts) > 1 && parts[1] != "" {
		for _, t := range strings.Split(parts[1], ",") {
			b, err := decodeHex(t)
			if err != nil || len(b) != types.HashLength {
				return nil, fmt.Errorf("invalid log topic %q", t)
			}
			topics = append(topics, types.BytesToHash(b))
		}
	}
	var data []byte
	if len(parts) > 2 {
		if data, err = decodeHex(parts[2]); err != nil {
			return nil, fmt.Errorf("invalid log data %q", parts[2])
		}
	}
	return types.NewLog(types.BytesToAddress(addr), topics, data), nil
}

func decodeCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a hex receipt (or receipt list) and print it as JSON",
		ArgsUsage: "<hex | ->",
		Flags:     []cli.Flag{ListFlag},
		Action: func(ctx *cli.Context) error {
			data, err := readHexArg(ctx)
			if err != nil {
				return err
			}
			if ctx.Bool(ListFlag.Name) {
				rs, err := codec.DecodeReceipts(data)
				if err != nil {
					return err
				}
				env.log.Debug("Decoded receipt list", "count", len(rs))
				if rs == nil {
					rs = []*types.Receipt{}
				}
				return writeJSON(ctx.App.Writer, rs)
			}
			r, err := codec.DecodeReceipt(data)
			if err != nil {
				return err
			}
			return writeJSON(ctx.App.Writer, r)
		},
	}
}

func inspectCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the RLP item tree of hex input",
		ArgsUsage: "<hex | ->",
		Description: `Prints one line per item, indenting list members. Strings of up
to 32 bytes that are canonical scalars also show their decimal value. A
typed receipt shows up as a byte followed by its list.`,
		Action: func(ctx *cli.Context) error {
			data, err := readHexArg(ctx)
			if err != nil {
				return err
			}
			n, err := rlp.CountValues(data)
			if err != nil {
				return err
			}
			env.log.Debug("Inspecting RLP", "size", len(data), "items", n)
			return inspectRLP(ctx.App.Writer, data, 0)
		},
	}
}

// inspectRLP writes the items of b at the given nesting depth.
func inspectRLP(w io.Writer, b []byte, depth int) error {
	indent := strings.Repeat("  ", depth)
	for len(b) > 0 {
		kind, content, rest, err := rlp.Split(b)
		if err != nil {
			return err
		}
		if kind == rlp.List {
			if _, err := fmt.Fprintf(w, "%slist %d\n", indent, len(content)); err != nil {
				return err
			}
			if err := inspectRLP(w, content, depth+1); err != nil {
				return err
			}
			b = rest
			continue
		}
		line := fmt.Sprintf("%s%s %s", indent, strings.ToLower(kind.String()), hexutil.Encode(content))
		if v, err := rlp.NewCursor(b[:len(b)-len(rest)]).Uint256(); err == nil {
			line += " = " + v.Dec()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		b = rest
	}
	return nil
}

func rootCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "root",
		Usage:     "Compute the receipts root and block bloom of a hex receipt list",
		ArgsUsage: "<hex | ->",
		Action: func(ctx *cli.Context) error {
			rs, err := readReceiptList(ctx)
			if err != nil {
				return err
			}
			if err := types.ValidateCumulativeGas(rs); err != nil {
				env.log.Warn("Receipt list is inconsistent", "err", err)
			}
			out := struct {
				Root  types.Hash  `json:"root"`
				Bloom types.Bloom `json:"logsBloom"`
				Count int         `json:"count"`
			}{types.DeriveReceiptsRoot(rs), rs.Bloom(), len(rs)}
			return writeJSON(ctx.App.Writer, out)
		},
	}
}

// proofJSON is the printed form of a receipt proof.
type proofJSON struct {
	Index   hexutil.Uint64  `json:"index"`
	Root    types.Hash      `json:"root"`
	Receipt hexutil.Bytes   `json:"receipt"`
	Proof   []hexutil.Bytes `json:"proof"`
}

func proveCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "prove",
		Usage:     "Build a Merkle proof for one receipt of a hex receipt list",
		ArgsUsage: "<hex | ->",
		Flags:     []cli.Flag{IndexFlag},
		Action: func(ctx *cli.Context) error {
			rs, err := readReceiptList(ctx)
			if err != nil {
				return err
			}
			p, err := types.ProveReceipt(rs, ctx.Int(IndexFlag.Name))
			if err != nil {
				return err
			}
			if _, err := p.Verify(p.Root); err != nil {
				return err
			}
			env.log.Debug("Built receipt proof", "index", p.Index, "nodes", len(p.Nodes))
			out := proofJSON{
				Index:   hexutil.Uint64(p.Index),
				Root:    p.Root,
				Receipt: p.Receipt,
			}
			for _, n := range p.Nodes {
				out.Proof = append(out.Proof, n)
			}
			return writeJSON(ctx.App.Writer, out)
		},
	}
}

// filteredLogJSON is the printed form of a matched log: the log fields plus
// its position in the block.
type filteredLogJSON struct {
	TxIndex  hexutil.Uint
	LogIndex hexutil.Uint
	Log      *types.Log
}

func (f filteredLogJSON) MarshalJSON() ([]byte, error) {
	logJSON, err := json.Marshal(f.Log)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(logJSON, &fields); err != nil {
		return nil, err
	}
	fields["transactionIndex"], _ = json.Marshal(f.TxIndex)
	fields["logIndex"], _ = json.Marshal(f.LogIndex)
	return json.Marshal(fields)
}

func filterCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "Print the logs of a hex receipt list that match a filter",
		ArgsUsage: "<hex | ->",
		Flags:     []cli.Flag{AddressFlag, TopicFlag},
		Action: func(ctx *cli.Context) error {
			f, err := parseFilter(ctx.StringSlice(AddressFlag.Name), ctx.StringSlice(TopicFlag.Name))
			if err != nil {
				return err
			}
			rs, err := readReceiptList(ctx)
			if err != nil {
				return err
			}
			matched := types.FilterLogs(rs, f)
			env.log.Debug("Filtered logs", "receipts", len(rs), "matched", len(matched))
			out := make([]filteredLogJSON, 0, len(matched))
			for _, m := range matched {
				out = append(out, filteredLogJSON{
					TxIndex:  hexutil.Uint(m.TxIndex),
					LogIndex: hexutil.Uint(m.LogIndex),
					Log:      m.Log,
				})
			}
			return writeJSON(ctx.App.Writer, out)
		},
	}
}

func parseFilter(addresses, topics []string) (types.LogFilter, error) {
	var f types.LogFilter
	for _, a := range addresses {
		b, err := decodeHex(a)
		if err != nil || len(b) != types.AddressLength {
			return f, fmt.Errorf("invalid filter address %q", a)
		}
		f.Addresses = append(f.Addresses, types.BytesToAddress(b))
	}
	for _, position := range topics {
		var alternatives []types.Hash
		if position != "" {
			for _, t := range strings.Split(position, ",") {
				b, err := decodeHex(t)
				if err != nil || len(b) != types.HashLength {
					return f, fmt.Errorf("invalid filter topic %q", t)
				}
				alternatives = append(alternatives, types.BytesToHash(b))
			}
		}
		f.Topics = append(f.Topics, alternatives)
	}
	return f, nil
}

// readInput returns the contents of the file named by arg, or of the
// app's reader when arg is "-".
func readInput(ctx *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(ctx.App.Reader)
	}
	return os.ReadFile(arg)
}

// readHexArg decodes the first argument as hex. "-" reads the hex text from
// the app's reader.
func readHexArg(ctx *cli.Context) ([]byte, error) {
	arg := ctx.Args().First()
	switch arg {
	case "":
		return nil, errNoInput
	case "-":
		text, err := io.ReadAll(ctx.App.Reader)
		if err != nil {
			return nil, err
		}
		arg = string(text)
	}
	return decodeHex(arg)
}

func readReceiptList(ctx *cli.Context) (types.Receipts, error) {
	data, err := readHexArg(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := codec.DecodeReceipts(data)
	if err != nil {
		return nil, err
	}
	return types.Receipts(rs), nil
}

// decodeHex accepts hex with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
