package util

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}

	for _, c := range cases {
		log := NewLogger(c.level, "json")
		if !log.Enabled(context.Background(), c.enabled) {
			t.Errorf("NewLogger(%q) should enable %v", c.level, c.enabled)
		}
		if log.Enabled(context.Background(), c.muted) {
			t.Errorf("NewLogger(%q) should mute %v", c.level, c.muted)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	if log := NewLogger("info", "text"); log == nil {
		t.Fatal("NewLogger returned nil for text format")
	}
	if log := NewLogger("info", ""); log == nil {
		t.Fatal("NewLogger returned nil for default format")
	}
}
