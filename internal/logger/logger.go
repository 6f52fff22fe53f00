// Package logger configures the process-wide slog handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/talgya/hexisle/internal/config"
)

// Init installs the default slog logger on stdout.
func Init(cfg config.LoggingConfig) {
	InitTo(os.Stdout, cfg)
}

// InitTo installs the default slog logger writing to w.
func InitTo(w io.Writer, cfg config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.With("component", "logger").Debug("logger initialized",
		"level", cfg.Level,
		"format", cfg.Format,
	)
}

// ParseLevel maps a level name to a slog.Level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
