package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v (raw: %s)", err, buf.String())
	}
	return entry
}

func TestLogger_Module(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, slog.LevelDebug)
	l.Module("rawdb").Info("hello")

	entry := decodeEntry(t, &buf)
	if entry["module"] != "rawdb" {
		t.Fatalf("module = %v, want %q", entry["module"], "rawdb")
	}
	if entry["msg"] != "hello" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "hello")
	}
}

func TestLogger_ModuleChain(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, slog.LevelDebug)
	l.Module("ancient").With("table", "receipts").Warn("truncated", "items", 3)

	entry := decodeEntry(t, &buf)
	if entry["module"] != "ancient" || entry["table"] != "receipts" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["items"] != float64(3) {
		t.Fatalf("items = %v, want 3", entry["items"])
	}
	if entry["level"] != "WARN" {
		t.Fatalf("level = %v, want WARN", entry["level"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, slog.LevelWarn)
	l.Debug("d")
	l.Info("i")
	if buf.Len() != 0 {
		t.Fatalf("below-level records were written: %s", buf.String())
	}
	l.Error("e")
	if buf.Len() == 0 {
		t.Fatal("error record was filtered")
	}
}

func TestNewTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf, slog.LevelInfo).Module("cli").Info("encoded", "bytes", 360)
	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=encoded", "module=cli", "bytes=360"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v    int
		want slog.Level
	}{
		{1, slog.LevelError},
		{2, slog.LevelWarn},
		{3, slog.LevelInfo},
		{4, slog.LevelDebug},
		{9, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if LevelFromVerbosity(0) <= slog.LevelError {
		t.Error("verbosity 0 should silence errors")
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewJSON(&buf, slog.LevelDebug))
	SetDefault(nil)
	Info("via default", "k", "v")

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "via default" || entry["k"] != "v" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestModuleUsesDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewJSON(&buf, slog.LevelInfo))
	l := Module("cli")
	l.Debug("dropped")
	l.Info("kept")

	entry := decodeEntry(t, &buf)
	if entry["module"] != "cli" || entry["msg"] != "kept" {
		t.Fatalf("entry = %v", entry)
	}
}
