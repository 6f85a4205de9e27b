package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"transcript-summarizer/internal/observability/logging"
	"transcript-summarizer/internal/usecase/summarize"
)

// Runner executes one summarization run. *summarize.Service satisfies it.
type Runner interface {
	Run(ctx context.Context) (*summarize.RunStats, error)
}

// Scheduler triggers runs on the configured cron schedule.
// A tick that fires while a run is still in progress is skipped, so at most
// one run is active per process.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	cfg     WorkerConfig
	metrics *WorkerMetrics
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. An unknown timezone falls back to UTC.
func NewScheduler(runner Runner, cfg WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) *Scheduler {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:    c,
		runner:  runner,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Run schedules the job and blocks until ctx is cancelled.
// On return any in-flight run has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, func() {
		_ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("worker started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))

	<-ctx.Done()

	s.logger.Info("worker stopping, waiting for running job")
	<-s.cron.Stop().Done()
	return nil
}

// RunOnce executes one run bounded by RunTimeout and records its metrics.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ctx = logging.WithRunID(ctx, uuid.NewString())
	ctx = logging.WithLogger(ctx, s.logger)
	logger := logging.WithRun(ctx, s.logger)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	startTime := time.Now()
	s.metrics.RecordJobRun("started")
	logger.Info("scheduled run started")

	stats, err := s.runner.Run(ctx)
	s.metrics.RecordJobDuration(time.Since(startTime).Seconds())
	if stats != nil {
		s.metrics.RecordRecordsSummarized(stats.Summarized)
	}

	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		// Records finished before the deadline are already persisted.
		logger.Warn("scheduled run hit its timeout", slog.Duration("run_timeout", s.cfg.RunTimeout))
		s.metrics.RecordJobRun("timeout")
		return err
	default:
		logger.Error("scheduled run failed", slog.Any("error", err))
		s.metrics.RecordJobRun("failure")
		return err
	}

	s.metrics.RecordJobRun("success")
	s.metrics.RecordLastSuccess()
	return nil
}
