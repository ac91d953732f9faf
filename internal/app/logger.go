package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/guildqueue/internal/config"
)

// NewLogger creates the process logger from cfg, tags every record with the
// build version and installs it as the slog default.
//
// Format "json" produces JSON records; anything else produces text records
// with source locations. Level is one of debug, info, warn, error
// (case-insensitive) and defaults to info. Output goes to os.Stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg)).With(slog.String("version", Version))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	json := strings.EqualFold(cfg.Format, "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !json,
	}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
