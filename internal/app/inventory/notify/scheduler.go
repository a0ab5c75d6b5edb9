package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScheduleConfig holds the cron specs and retention of the outbox jobs.
type ScheduleConfig struct {
	RelaySchedule          string
	CleanupSchedule        string
	CompletedRetentionDays int
	FailedRetentionDays    int
}

// NewScheduler registers the relay and cleanup jobs on a cron scheduler. The
// caller starts it and calls Stop on shutdown. Jobs run with ctx and skip a run
// that is still in progress.
func NewScheduler(ctx context.Context, relay *Relay, cfg ScheduleConfig, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	jobs := map[string]struct {
		schedule string
		run      func()
	}{
		"outbox-relay": {cfg.RelaySchedule, func() {
			if _, err := relay.RunOnce(ctx); err != nil {
				logJobError(logger, "outbox-relay", err)
			}
		}},
		"outbox-cleanup": {cfg.CleanupSchedule, func() {
			if _, err := relay.Cleanup(ctx, cfg.CompletedRetentionDays, cfg.FailedRetentionDays); err != nil {
				logJobError(logger, "outbox-cleanup", err)
			}
		}},
	}

	for name, job := range jobs {
		if job.schedule == "" {
			continue
		}
		if _, err := c.AddFunc(job.schedule, job.run); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", name, err)
		}
		logger.Info("scheduled job", zap.String("job", name), zap.String("schedule", job.schedule))
	}
	return c, nil
}

func logJobError(logger *zap.Logger, job string, err error) {
	if errors.Is(err, ErrLockHeld) || errors.Is(err, context.Canceled) {
		logger.Debug("job skipped", zap.String("job", job), zap.Error(err))
		return
	}
	logger.Error("job failed", zap.String("job", job), zap.Error(err))
}
