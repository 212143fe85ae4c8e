package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"uaforge/cmd/uaforge/commands"
	"uaforge/lib/serviceutil"
	"uaforge/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)

	_, err := telemetry.SetupFromEnv(context.Background(), "uaforge")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to set up telemetry", "err", err)
	}

	commands.ExecuteContext(serviceutil.SignalContext())
}
