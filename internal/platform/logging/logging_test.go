package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/learnflow/learnflow/internal/platform/config"
	"github.com/learnflow/learnflow/internal/platform/logging"
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
		if got := logging.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, config.LogConfig{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("quiz loaded", "module_id", "mod-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["module_id"] != "mod-1" {
		t.Errorf("module_id = %v, want mod-1", entry["module_id"])
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, config.LogConfig{Level: "debug", Format: "text"})

	logger.Debug("navigating", "delta", 1)

	if !strings.Contains(buf.String(), "delta=1") {
		t.Errorf("text output = %q, want key=value pairs", buf.String())
	}
}
