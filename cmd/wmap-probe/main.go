package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ssmendon/sdnprobe/cmd/wmap-probe/commands"
	"github.com/ssmendon/sdnprobe/internal/telemetry"
)

func main() {
	os.Exit(run())
}

// run contains everything that needs its deferred cleanup to actually
// execute; os.Exit in main skips deferred calls, so the exit code is
// threaded back out instead of calling os.Exit directly in here.
func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		slog.Warn("wmap-probe: tracing disabled, failed to initialize", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Warn("wmap-probe: tracer shutdown failed", "error", err)
			}
		}()
	}

	return commands.Execute(ctx)
}
