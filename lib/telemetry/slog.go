package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default slog handler. debug enables
// request-level logging in the http layer.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
