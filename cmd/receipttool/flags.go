package main

import (
	"github.com/urfave/cli/v2"
)

const (
	globalCategory  = "GLOBAL"
	receiptCategory = "RECEIPT"
	storeCategory   = "STORE"
)

var (
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: globalCategory,
	}
	DataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for the receipt database",
		Category: globalCategory,
	}
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Log level 0-5 (0=silent, 1=error, 2=warn, 3=info, 4+=debug)",
		Value:    3,
		Category: globalCategory,
	}
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Serve Prometheus metrics while the command runs",
		Category: globalCategory,
	}
	MetricsAddrFlag = &cli.StringFlag{
		Name:     "metrics.addr",
		Usage:    "Listen address of the metrics server",
		Category: globalCategory,
	}
	AncientDirFlag = &cli.StringFlag{
		Name:     "ancient",
		Usage:    "Directory of the ancient receipt table (default: <datadir>/ancient)",
		Category: globalCategory,
	}

	TypeFlag = &cli.StringFlag{
		Name:     "type",
		Usage:    "Receipt type: legacy, eip2930 or eip1559",
		Value:    "legacy",
		Category: receiptCategory,
	}
	StatusFlag = &cli.Uint64Flag{
		Name:     "status",
		Usage:    "Execution status (0=failed, 1=success)",
		Value:    1,
		Category: receiptCategory,
	}
	GasFlag = &cli.Uint64Flag{
		Name:     "gas",
		Usage:    "Cumulative gas used",
		Category: receiptCategory,
	}
	LogFlag = &cli.StringSliceFlag{
		Name:     "log",
		Usage:    "Log entry as address[:topic,topic...[:data]], hex encoded, repeatable",
		Category: receiptCategory,
	}
	NoHeaderFlag = &cli.BoolFlag{
		Name:     "no-header",
		Usage:    "Emit typed receipts without the outer string header",
		Category: receiptCategory,
	}
	ListFlag = &cli.BoolFlag{
		Name:     "list",
		Usage:    "Input is an RLP list of receipts",
		Category: receiptCategory,
	}
	IndexFlag = &cli.IntFlag{
		Name:     "index",
		Usage:    "Receipt index within the block",
		Category: receiptCategory,
	}
	AddressFlag = &cli.StringSliceFlag{
		Name:     "address",
		Usage:    "Emitting contract address to match, repeatable",
		Category: receiptCategory,
	}
	TopicFlag = &cli.StringSliceFlag{
		Name:     "topic",
		Usage:    "Topic position filter as comma separated alternatives, empty for any; repeatable in position order",
		Category: receiptCategory,
	}

	NumberFlag = &cli.Uint64Flag{
		Name:     "number",
		Usage:    "Block number",
		Required: true,
		Category: storeCategory,
	}
	HashFlag = &cli.StringFlag{
		Name:     "hash",
		Usage:    "Block hash",
		Required: true,
		Category: storeCategory,
	}
)

var globalFlags = []cli.Flag{
	ConfigFileFlag,
	DataDirFlag,
	VerbosityFlag,
	MetricsEnabledFlag,
	MetricsAddrFlag,
	AncientDirFlag,
}

// applyFlags overrides cfg with the global flags that were set explicitly.
func applyFlags(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.String(DataDirFlag.Name)
	}
	if ctx.IsSet(VerbosityFlag.Name) {
		cfg.Verbosity = ctx.Int(VerbosityFlag.Name)
	}
	if ctx.IsSet(MetricsEnabledFlag.Name) {
		cfg.Metrics.Enabled = ctx.Bool(MetricsEnabledFlag.Name)
	}
	if ctx.IsSet(MetricsAddrFlag.Name) {
		cfg.Metrics.Addr = ctx.String(MetricsAddrFlag.Name)
	}
	if ctx.IsSet(AncientDirFlag.Name) {
		cfg.Ancient.Dir = ctx.String(AncientDirFlag.Name)
	}
}
