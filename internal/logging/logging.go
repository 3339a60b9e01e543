// Package logging configures structured logging with log/slog.
//
// Text output goes through tint for colored, human readable lines; the json
// format is meant for log collectors.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds logging settings
type Config struct {
	Level  string `json:"level"`  // debug, info, warn, error (default: info)
	Format string `json:"format"` // text or json (default: text)
}

// Setup installs the default logger described by cfg
func Setup(cfg Config) {
	slog.SetDefault(New(os.Stderr, cfg))
}

// New builds a logger writing to w
func New(w io.Writer, cfg Config) *slog.Logger {
	level := ParseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
	}))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
