// Command advisorctl administers an advisor engine deployment: share codes,
// schema migrations, configuration seeds and ad-hoc gRPC calls.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shakespeare-advisor/advisor-engine/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.FromEnv(), logger).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
