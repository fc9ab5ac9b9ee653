package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/infrastructure/metrics"
)

// Locker serializes a job across instances.
type Locker interface {
	WithLock(ctx context.Context, name string, ttl time.Duration, fn func(context.Context) error) (bool, error)
}

// Scheduler runs named jobs on cron specs. Each run holds a distributed lock so only one
// instance executes a job at a time; a local run still in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
	jobs    map[string]func(context.Context) error
	ctx     context.Context
}

// New creates a new Scheduler. A nil locker runs jobs without cross-instance locking.
func New(locker Locker, lockTTL time.Duration, m *metrics.Metrics, logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker:  locker,
		lockTTL: lockTTL,
		metrics: m,
		logger:  logger,
		jobs:    make(map[string]func(context.Context) error),
		ctx:     context.Background(),
	}
}

// Add registers run under name on the cron spec.
func (s *Scheduler) Add(name, spec string, run func(context.Context) error) error {
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	if _, err := s.cron.AddFunc(spec, func() { _ = s.RunNow(s.ctx, name) }); err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	s.jobs[name] = run
	return nil
}

// RunNow runs the named job once, under the lock.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	run, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}

	start := time.Now()
	log := s.logger.With().Str("job", name).Logger()

	var (
		ran = true
		err error
	)
	if s.locker != nil {
		ran, err = s.locker.WithLock(ctx, "job:"+name, s.lockTTL, run)
	} else {
		err = run(ctx)
	}

	switch {
	case err != nil:
		s.count(name, "failed")
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("scheduled job failed")
	case !ran:
		s.count(name, "skipped")
		log.Debug().Msg("scheduled job held by another instance")
	default:
		s.count(name, "succeeded")
		log.Info().Dur("duration", time.Since(start)).Msg("scheduled job finished")
	}
	return err
}

// Start starts the cron loop. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop stops scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) count(job, status string) {
	if s.metrics != nil {
		s.metrics.ScheduledRuns.WithLabelValues(job, status).Inc()
	}
}

type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
