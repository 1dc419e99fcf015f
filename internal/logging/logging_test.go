package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohlcv-etl/ohlcv/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger_WritesConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "etl.log")
	var console bytes.Buffer

	logger, closer, err := newLogger(config.LoggingConfig{
		Level:      "info",
		Format:     "text",
		File:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	}, &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}

	logger.Info("load complete", "records", 3)
	logger.Debug("hidden")

	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	for name, got := range map[string]string{"console": console.String(), "file": string(data)} {
		if !strings.Contains(got, "load complete") || !strings.Contains(got, "records=3") {
			t.Errorf("%s output = %q, want load complete records=3", name, got)
		}
		if strings.Contains(got, "hidden") {
			t.Errorf("%s output contains debug line at info level", name)
		}
	}
}

func TestNewLogger_JSONConsoleOnly(t *testing.T) {
	var console bytes.Buffer

	logger, closer, err := newLogger(config.LoggingConfig{Format: "json"}, &console)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer closer.Close()

	logger.Warn("rate limit hit", "symbol", "TSLA")

	if !strings.Contains(console.String(), `"symbol":"TSLA"`) {
		t.Errorf("console = %q, want JSON symbol attribute", console.String())
	}
}
