package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yt-summary/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Job is a periodic maintenance task. Run returns a human-readable summary of the run.
type Job interface {
	Name() string
	Run(ctx context.Context) (string, error)
}

// Scheduler runs one job on a cron schedule and reports each run to the monitor
type Scheduler struct {
	monitor  *monitoring.Monitor
	job      Job
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func New(schedule string, job Job, monitor *monitoring.Monitor, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	cl := cronLogger{logger: logger}
	return &Scheduler{
		monitor:  monitor,
		job:      job,
		schedule: schedule,
		logger:   logger,
		// Prevent overlapping runs
		cron: cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
	}
}

// cronLogger sends cron's own messages to slog. cron's info messages are chatty, so they log at debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{slog.Any("err", err)}, keysAndValues...)...)
}

// Start registers the job and blocks until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled job failed", slog.String("job", s.job.Name()), slog.Any("err", err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.logger.Info("scheduler started", slog.String("job", s.job.Name()), slog.String("schedule", s.schedule))
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info("scheduler stopped", slog.String("job", s.job.Name()))
	<-s.cron.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	startTime := time.Now()
	name := s.job.Name()

	s.logger.Info("starting job", slog.String("job", name))

	summary, err := s.job.Run(ctx)
	duration := time.Since(startTime)
	if err != nil {
		s.monitor.RecordFailure(fmt.Errorf("%s failed: %w", name, err), duration)
		return fmt.Errorf("%s run failed: %w", name, err)
	}

	s.monitor.RecordSuccess(summary, duration)
	return nil
}
