package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"tubefetch/internal/core/ports"
	"tubefetch/internal/service"
)

// UpdateChecker runs one self-update check.
type UpdateChecker interface {
	Check(ctx context.Context, progress ports.ProgressFunc) (*service.UpdateResult, error)
}

// JobPruner forgets finished background jobs.
type JobPruner interface {
	Prune(olderThan time.Duration) int
}

// Config selects what the scheduler runs. A nil Updater disables update checks.
type Config struct {
	Updater        UpdateChecker
	UpdateInterval time.Duration
	Jobs           JobPruner
	JobRetention   time.Duration
}

// Scheduler re-checks the update manifest and drops old finished jobs on fixed intervals.
type Scheduler struct {
	cfg       Config
	logger    zerolog.Logger
	scheduler gocron.Scheduler
}

func New(cfg Config, logger zerolog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cfg:       cfg,
		logger:    logger,
		scheduler: s,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Updater != nil {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(s.cfg.UpdateInterval),
			gocron.NewTask(func() {
				s.checkUpdates(ctx)
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	if s.cfg.Jobs != nil {
		_, err := s.scheduler.NewJob(
			gocron.DurationJob(s.cfg.JobRetention/2),
			gocron.NewTask(func() {
				s.pruneJobs()
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	s.scheduler.Start()
	s.logger.Info().
		Bool("updates", s.cfg.Updater != nil).
		Dur("update_interval", s.cfg.UpdateInterval).
		Dur("job_retention", s.cfg.JobRetention).
		Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Error().Err(err).Msg("scheduler shutdown error")
	}
}

func (s *Scheduler) checkUpdates(ctx context.Context) {
	res, err := s.cfg.Updater.Check(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled update check failed")
		return
	}
	if res.Updated {
		s.logger.Warn().Str("version", res.Version).Msg("update installed, restart to apply")
	}
}

func (s *Scheduler) pruneJobs() {
	if n := s.cfg.Jobs.Prune(s.cfg.JobRetention); n > 0 {
		s.logger.Debug().Int("removed", n).Msg("finished jobs pruned")
	}
}
