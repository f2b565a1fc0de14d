package app

import (
	"log/slog"
	"os"
	"strings"

	"marketplace-delivery/internal/config"
	"marketplace-delivery/internal/logx"
)

// NewLogger returns a JSON logger on stdout at the configured level.
func NewLogger(cfg *config.Config) logx.Logger {
	return logx.NewJSON(os.Stdout, parseLevel(cfg.LogLevel))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
