package daemon

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// Scheduler wraps a gocron scheduler for periodic rebuilds.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a new scheduler instance.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleEvery runs task every interval. A run still in progress when the
// next one is due pushes that one back.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ValidationError("interval must be greater than zero").
			WithContext("job", name).
			Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to schedule job").
			WithContext("job", name).
			Build()
	}
	slog.Info("Scheduled periodic job", logfields.Job(name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() { s.scheduler.Start() }

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to stop scheduler").Build()
	}
	return nil
}
