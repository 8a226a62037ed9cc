package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileLoggerWritesEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "debug", File: true, FilePath: path, MaxSize: 1})

	LogTradeSaved(WithOperation(logger, "save"), "01HX", "EURUSD", 100, 2)
	LogGuardrail(logger, "daily_loss", 450, 500, false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"event":"trade_saved"`, `"operation":"save"`, `"rule":"daily_loss"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestLevelFiltersEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.log")
	logger := NewLoggerWithConfig(LogConfig{Level: "error", File: true, FilePath: path, MaxSize: 1})

	LogOutcome(logger, "01HX", "WIN", 200)

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "outcome") {
		t.Errorf("info event written at error level: %s", data)
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.GetLevel() != zerolog.Disabled {
		t.Errorf("FromContext without logger should be a no-op logger, level %v", got.GetLevel())
	}

	logger := zerolog.New(nil).Level(zerolog.WarnLevel)
	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got.GetLevel() != zerolog.WarnLevel {
		t.Errorf("FromContext level = %v, want warn", got.GetLevel())
	}
}
