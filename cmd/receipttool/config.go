package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
)

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// AncientConfig configures the ancient receipt table.
type AncientConfig struct {
	Dir      string // defaults to <datadir>/ancient
	Compress bool
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// Config is the tool configuration, loaded from an optional TOML file and
// overridden by command line flags.
type Config struct {
	DataDir   string
	Verbosity int
	Cache     int // leveldb cache in MiB
	Handles   int // leveldb open files

	Ancient AncientConfig
	Metrics MetricsConfig
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		DataDir:   defaultDataDir(),
		Verbosity: 3,
		Cache:     64,
		Handles:   64,
		Ancient:   AncientConfig{Compress: true},
		Metrics:   MetricsConfig{Addr: "127.0.0.1:6060"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".receipttool"
	}
	return filepath.Join(home, ".receipttool")
}

// tomlSettings keeps TOML keys identical to the Go field names and rejects
// keys that have no matching field.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, id, link)
	},
}

// LoadConfig reads a TOML file over cfg. Fields absent from the file keep
// their current values.
func LoadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// DumpConfig renders cfg as TOML.
func DumpConfig(cfg *Config) ([]byte, error) {
	return tomlSettings.Marshal(cfg)
}

// Validate checks the configuration for values the tool cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: datadir must not be empty", ErrInvalidConfig)
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("%w: verbosity %d out of range [0, 5]", ErrInvalidConfig, c.Verbosity)
	}
	if c.Cache < 0 || c.Handles < 0 {
		return fmt.Errorf("%w: cache and handles must not be negative", ErrInvalidConfig)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("%w: metrics enabled without an address", ErrInvalidConfig)
	}
	return nil
}

// ChainDataDir is the leveldb directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, "chaindata")
}

// AncientDir is the directory of the ancient receipt table.
func (c *Config) AncientDir() string {
	if c.Ancient.Dir != "" {
		return c.Ancient.Dir
	}
	return filepath.Join(c.DataDir, "ancient")
}
