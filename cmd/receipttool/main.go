// Command receipttool encodes, decodes and stores Ethereum transaction
// receipts.
//
// Usage:
//
//	receipttool [global flags] <command> [flags] [args]
//
// Commands:
//
//	encode      Build a receipt from flags or JSON and print its encoding
//	decode      Decode a receipt or receipt list and print it as JSON
//	root        Compute the receipts root of a receipt list
//	prove       Build and verify a Merkle proof for one receipt of a list
//	filter      Match the logs of a receipt list against a filter
//	db          Read and write receipts in the on-disk store
//	dumpconfig  Print the effective configuration as TOML
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/eth2030/receiptcodec/log"
	"github.com/eth2030/receiptcodec/metrics"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the tool with the given arguments (including the program
// name) and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp(stdin, stdout, stderr)
	if err := app.Run(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// toolEnv is the state shared by all commands of one invocation.
type toolEnv struct {
	cfg     Config
	log     *log.Logger
	metrics *http.Server
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	env := &toolEnv{cfg: DefaultConfig()}
	return &cli.App{
		Name:      "receipttool",
		Usage:     "Ethereum receipt codec and store",
		Version:   fmt.Sprintf("%s (commit %s)", version, commit),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags,
		// Log and topic flags use commas inside a single value.
		DisableSliceFlagSeparator: true,
		Commands: []*cli.Command{
			encodeCommand(env),
			decodeCommand(env),
			inspectCommand(env),
			rootCommand(env),
			proveCommand(env),
			filterCommand(env),
			dbCommand(env),
			dumpConfigCommand(env),
		},
		Before: env.setup,
		After:  env.teardown,
		// Errors are reported once by run.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setup resolves the configuration, installs the logger and starts the
// metrics server when enabled.
func (e *toolEnv) setup(ctx *cli.Context) error {
	if path := ctx.String(ConfigFileFlag.Name); path != "" {
		if err := LoadConfig(path, &e.cfg); err != nil {
			return err
		}
	}
	applyFlags(ctx, &e.cfg)
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	log.SetDefault(log.NewTerminal(ctx.App.ErrWriter, log.LevelFromVerbosity(e.cfg.Verbosity)))
	e.log = log.Module("cli")

	if e.cfg.Metrics.Enabled {
		if err := e.startMetrics(); err != nil {
			return err
		}
	}
	return nil
}

func (e *toolEnv) startMetrics() error {
	ln, err := net.Listen("tcp", e.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(metrics.DefaultRegistry, metrics.DefaultPrometheusConfig()))
	e.metrics = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := e.metrics.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("Metrics server failed", "err", err)
		}
	}()
	e.log.Info("Serving metrics", "addr", ln.Addr().String())
	return nil
}

func (e *toolEnv) teardown(*cli.Context) error {
	if e.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.metrics.Shutdown(ctx)
}

func dumpConfigCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:  "dumpconfig",
		Usage: "Print the effective configuration as TOML",
		Action: func(ctx *cli.Context) error {
			out, err := DumpConfig(&env.cfg)
			if err != nil {
				return err
			}
			_, err = ctx.App.Writer.Write(out)
			return err
		},
	}
}
