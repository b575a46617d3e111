package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests: WARN and above on stdout, or DEBUG
// when TEST_DEBUG is set.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}
