package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// job is one engine command queued on an inquiry's shard. The shard goroutine
// runs it and reports the result on done, which is buffered so the shard
// never blocks on a caller that stopped waiting.
type job struct {
	ctx       context.Context
	inquiryID int64
	fn        func(ctx context.Context) error
	done      chan error
	queuedAt  time.Time
}

func newJob(ctx context.Context, inquiryID int64, fn func(ctx context.Context) error) *job {
	return &job{
		ctx:       ctx,
		inquiryID: inquiryID,
		fn:        fn,
		done:      make(chan error, 1),
		queuedAt:  time.Now(),
	}
}

// run executes the job under timeout. A panic in fn becomes an error so one
// bad command cannot take the shard, and every inquiry routed to it, down.
func (j *job) run(timeout time.Duration, log *slog.Logger) {
	// The caller may have given up while the job sat in the queue.
	if err := j.ctx.Err(); err != nil {
		j.done <- err
		return
	}

	ctx, cancel := context.WithTimeout(j.ctx, timeout)
	defer cancel()

	start := time.Now()
	err := j.call(ctx)
	log.Debug("worker: command finished",
		"inquiry_id", j.inquiryID,
		"queued", start.Sub(j.queuedAt),
		"duration", time.Since(start),
		"error", err,
	)
	j.done <- err
}

func (j *job) call(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("worker: command for inquiry %d panicked: %v", j.inquiryID, p)
		}
	}()
	return j.fn(ctx)
}
