package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"

	"github.com/shakespeare-advisor/advisor-engine/internal/api"
	"github.com/shakespeare-advisor/advisor-engine/internal/cache"
	"github.com/shakespeare-advisor/advisor-engine/internal/catalog"
	"github.com/shakespeare-advisor/advisor-engine/internal/config"
	"github.com/shakespeare-advisor/advisor-engine/internal/rpc"
	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
	"github.com/shakespeare-advisor/advisor-engine/internal/store"
	"github.com/shakespeare-advisor/advisor-engine/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	encoder, err := cfg.Encoder()
	if err != nil {
		return fmt.Errorf("encoder: %w", err)
	}

	// Root context cancelled by OS signal. Worker, reloader and servers all
	// respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st, err := store.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	logger.Info("database connected")

	// ── Snapshot cache (optional) ─────────────────────────────────────────────
	var snapCache catalog.SnapshotCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		snapCache = cache.NewSnapshotCache(client, cfg.SnapshotCacheTTL)
		logger.Info("snapshot cache enabled", "ttl", cfg.SnapshotCacheTTL)
	}
	loader := catalog.NewLoader(st, snapCache, logger)

	// ── Configuration snapshot ────────────────────────────────────────────────
	if cfg.SnapshotFile != "" {
		snap, err := catalog.LoadFile(cfg.SnapshotFile)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if err := loader.Seed(ctx, snap); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("configuration seeded", "file", cfg.SnapshotFile)
	}
	snap, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	runner := worker.NewRunner(worker.RunnerConfig{
		Workers:        cfg.WorkerCount,
		CommandTimeout: cfg.CommandTimeout,
		QueueDepth:     worker.DefaultRunnerConfig().QueueDepth,
	}, logger)
	engine := scoring.NewEngine(snap, st, runner, logger)

	// ── HTTP + gRPC on one port ───────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := mux.Match(cmux.Any())

	srv := &http.Server{
		Handler: api.NewServer(engine, encoder, api.Config{
			Env:            cfg.Env,
			RequestTimeout: 30 * time.Second,
		}, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	grpcSrv := rpc.NewGRPCServer(rpc.NewServer(engine, encoder, logger))

	// Start the worker pool. It outlives the signal context so requests still
	// in flight during shutdown can reach their shard.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workerDone := make(chan struct{})
	go func() {
		runner.Start(workerCtx)
		close(workerDone)
	}()

	go reloadSnapshots(ctx, loader, engine, cfg.SnapshotCacheTTL, logger)

	serverErr := make(chan error, 3)
	go func() {
		if err := srv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, cmux.ErrListenerClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		if err := grpcSrv.Serve(grpcL); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// Block until either a signal arrives or a server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return err
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	err = drain(shutdownCtx, func(ctx context.Context) error {
		grpcSrv.GracefulStop()
		err := srv.Shutdown(ctx)
		mux.Close()
		return err
	}, stopWorkers, workerDone, logger)
	if err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// drain stops the servers first and only then the worker pool, so every
// request accepted before the signal is processed by its shard.
func drain(ctx context.Context, stopServers func(context.Context) error, stopWorkers context.CancelFunc, workerDone <-chan struct{}, logger *slog.Logger) error {
	serverErr := stopServers(ctx)
	stopWorkers()

	select {
	case <-workerDone:
	case <-ctx.Done():
		logger.Warn("worker pool did not drain in time")
	}
	if serverErr != nil {
		return fmt.Errorf("server shutdown: %w", serverErr)
	}
	return nil
}

// reloadSnapshots re-reads the configuration every interval so a seed applied
// by another replica (or advisorctl) reaches this engine without a restart.
func reloadSnapshots(ctx context.Context, loader *catalog.Loader, engine *scoring.Engine, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := loader.Load(ctx)
			if err != nil {
				logger.Warn("snapshot reload failed, keeping current configuration", "error", err)
				continue
			}
			engine.Reload(snap)
		}
	}
}
