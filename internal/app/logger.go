package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. The gate kiosk deployment tails
// plain text on the console; set LOG_FORMAT=json for log aggregation.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
