package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/retry"
)

// RebuildFunc rebuilds the content index. reason names the trigger for logs.
type RebuildFunc func(ctx context.Context, reason string) error

// Rebuilder runs rebuild requests on a single worker. Requests arriving while a
// rebuild runs collapse into one follow-up run.
type Rebuilder struct {
	fn     RebuildFunc
	logger *slog.Logger
	// pending holds at most one queued request.
	pending chan string
	policy  retry.Policy
	runs    atomic.Int64
}

// NewRebuilder creates a Rebuilder; call Run to start its worker.
func NewRebuilder(fn RebuildFunc, logger *slog.Logger) *Rebuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rebuilder{fn: fn, logger: logger, pending: make(chan string, 1), policy: retry.Disabled()}
}

// WithRetry retries failed rebuilds according to p.
func (r *Rebuilder) WithRetry(p retry.Policy) *Rebuilder {
	r.policy = p
	return r
}

// Request queues a rebuild without blocking. It is a no-op when one is
// already queued.
func (r *Rebuilder) Request(reason string) {
	select {
	case r.pending <- reason:
	default:
		r.logger.Debug("Rebuild already pending", logfields.Reason(reason))
	}
}

// Runs reports how many rebuilds have completed.
func (r *Rebuilder) Runs() int64 { return r.runs.Load() }

// Run processes requests until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-r.pending:
			start := time.Now()
			err := r.policy.Do(ctx, func(ctx context.Context) error { return r.fn(ctx, reason) },
				func(attempt int, delay time.Duration, err error) {
					r.logger.Warn("Rebuild failed, retrying",
						logfields.Reason(reason),
						slog.Int("attempt", attempt),
						slog.Duration("delay", delay),
						logfields.Error(err))
				})
			if err != nil {
				r.logger.Warn("Rebuild failed", logfields.Reason(reason), logfields.Error(err))
			} else {
				r.logger.Debug("Rebuild finished", logfields.Reason(reason), logfields.DurationMS(time.Since(start)))
			}
			r.runs.Add(1)
		}
	}
}
