// Package daemon keeps the content index current while serving. A filesystem
// watcher and an optional periodic job feed a single rebuild worker.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/retry"
)

// Options configures Run.
type Options struct {
	ContentRoot string
	Watch       bool
	Debounce    time.Duration
	// Interval > 0 schedules periodic rebuilds.
	Interval time.Duration
	// Retry applies to failed rebuilds. The zero value never retries.
	Retry  retry.Policy
	Logger *slog.Logger
}

// Run starts the rebuild worker and the enabled triggers, then blocks until
// ctx is done or the watcher fails to start.
func Run(ctx context.Context, rebuild RebuildFunc, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rebuilder := NewRebuilder(rebuild, logger).WithRetry(opts.Retry)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rebuilder.Run(ctx)
	}()
	// cancel runs before Wait on every return path.
	defer wg.Wait()
	defer cancel()

	if opts.Interval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("periodic-rebuild", opts.Interval, func() { rebuilder.Request("schedule") }); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	if opts.Watch {
		return NewWatcher(opts.ContentRoot, opts.Debounce, rebuilder, logger).Run(ctx)
	}
	<-ctx.Done()
	return nil
}
