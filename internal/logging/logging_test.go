package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")

	opts := DefaultOptions()
	opts.FilePath = logPath
	if err := Setup(opts); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	slog.Info("test message", "key", "value")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"msg":"test message"`) || !strings.Contains(line, `"key":"value"`) {
		t.Errorf("unexpected log line: %s", line)
	}
}

func TestSetupCreatesLogDir(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "run.log")
	opts := DefaultOptions()
	opts.FilePath = logPath
	if err := Setup(opts); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	slog.Info("hello")
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("expected log file in created directory: %v", err)
	}
}

func TestSetupLevelFilters(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	opts := DefaultOptions()
	opts.FilePath = logPath
	opts.Level = "error"
	if err := Setup(opts); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	slog.Info("dropped")
	slog.Error("kept")

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "dropped") {
		t.Error("info record written at error level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("error record missing")
	}
}
