package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) returned nil error")
	}
}

func TestNewFile_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tinsel.log")

	logger, err := NewFile(path, "info")
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("scene updated", zap.Int("added", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1 (debug filtered): %q", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry[MessageKey] != "scene updated" || entry[LevelKey] != "info" {
		t.Fatalf("entry = %v", entry)
	}
	if _, ok := entry[TimeKey].(string); !ok {
		t.Fatalf("entry time = %v, want ISO8601 string", entry[TimeKey])
	}
	if entry["added"] != float64(2) {
		t.Fatalf("entry added = %v, want 2", entry["added"])
	}
}

func TestNewFile_RejectsBadInput(t *testing.T) {
	if _, err := NewFile("  ", "info"); err == nil {
		t.Fatalf("NewFile with empty path returned nil error")
	}
	if _, err := NewFile(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatalf("NewFile with bad level returned nil error")
	}
}
