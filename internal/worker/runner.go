// Package worker runs engine commands on a fixed pool of shard goroutines.
// Every inquiry is owned by exactly one shard, so commands for the same
// inquiry execute one at a time and in arrival order while different
// inquiries proceed in parallel. The scoring package only sees the
// scoring.Serializer interface; it never imports worker.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// ErrStopped is returned by Do once the Runner has shut down.
var ErrStopped = errors.New("worker: runner stopped")

var _ scoring.Serializer = (*Runner)(nil)

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// values of DefaultRunnerConfig().
type RunnerConfig struct {
	// Workers is the number of shard goroutines. Default: 4.
	Workers int

	// CommandTimeout is the per-command context deadline. Default: 5s.
	CommandTimeout time.Duration

	// QueueDepth is the buffer of each shard's queue. Default: 64.
	QueueDepth int
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:        4,
		CommandTimeout: 5 * time.Second,
		QueueDepth:     64,
	}
}

// Runner manages the shard goroutines. Call Start to begin processing;
// commands submitted before Start wait in their shard's queue.
type Runner struct {
	cfg    RunnerConfig
	logger *slog.Logger

	shards  []chan *job
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewRunner constructs a Runner.
func NewRunner(cfg RunnerConfig, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = def.CommandTimeout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = def.QueueDepth
	}

	shards := make([]chan *job, cfg.Workers)
	for i := range shards {
		shards[i] = make(chan *job, cfg.QueueDepth)
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		shards:  shards,
		stopped: make(chan struct{}),
	}
}

// shard maps an inquiry to its owning shard.
func (r *Runner) shard(inquiryID int64) chan *job {
	return r.shards[uint64(inquiryID)%uint64(len(r.shards))]
}

// Do runs fn on the shard owning inquiryID and waits for its result. It
// satisfies scoring.Serializer.
func (r *Runner) Do(ctx context.Context, inquiryID int64, fn func(ctx context.Context) error) error {
	j := newJob(ctx, inquiryID, fn)

	select {
	case r.shard(inquiryID) <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}

	// Wait for the shard even when ctx is cancelled: fn sees the same
	// cancellation and returns promptly, and the next command for this
	// inquiry must not start before it has.
	select {
	case err := <-j.done:
		return err
	case <-r.stopped:
		select {
		case err := <-j.done:
			return err
		default:
			return ErrStopped
		}
	}
}

// Start launches the shard goroutines. It blocks until ctx is cancelled and
// every shard has finished its current command. Call it in a goroutine from
// main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "command_timeout", r.cfg.CommandTimeout)

	for i, q := range r.shards {
		r.wg.Add(1)
		go r.work(ctx, i, q)
	}

	r.wg.Wait()
	r.once.Do(func() { close(r.stopped) })
	r.logger.Info("worker: stopped")
}

// work is the inner loop for each shard goroutine.
func (r *Runner) work(ctx context.Context, id int, q <-chan *job) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Debug("worker: goroutine started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker: goroutine stopping")
			return
		case j := <-q:
			j.run(r.cfg.CommandTimeout, log)
		}
	}
}
