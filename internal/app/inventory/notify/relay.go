package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// ErrLockHeld is returned when another instance is already running the job.
var ErrLockHeld = errors.New("outbox job is running elsewhere")

// Locker guards a job so only one instance runs it at a time.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RedisLocker implements Locker with bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redislock.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() { _ = lock.Release(context.WithoutCancel(ctx)) }, nil
}

// localLocker is used when Redis is not configured; the process is the only runner.
type localLocker struct{}

func (localLocker) Obtain(context.Context, string, time.Duration) (func(), error) {
	return func() {}, nil
}

const (
	relayLockKey   = "inventory:outbox:relay"
	cleanupLockKey = "inventory:outbox:cleanup"
	lockTTL        = 30 * time.Second
)

// RelayConfig tunes a relay pass.
type RelayConfig struct {
	BatchSize  int
	MaxRetries int64
}

// RelayStats summarizes one relay pass.
type RelayStats struct {
	Published int
	Failed    int
}

// Relay moves pending outbox events to a publisher.
type Relay struct {
	outbox    contracts.OutboxRepository
	publisher contracts.EventPublisher
	locker    Locker
	clock     clock.Clock
	logger    *zap.Logger
	cfg       RelayConfig
	tracer    trace.Tracer
}

// NewRelay creates a Relay. A nil locker means the caller is the only runner.
func NewRelay(outbox contracts.OutboxRepository, publisher contracts.EventPublisher, locker Locker,
	clk clock.Clock, logger *zap.Logger, cfg RelayConfig) *Relay {
	if locker == nil {
		locker = localLocker{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		locker:    locker,
		clock:     clk,
		logger:    logger,
		cfg:       cfg,
		tracer:    otel.Tracer("inventory/notify"),
	}
}

// RunOnce publishes one batch of pending events in creation order. A publish
// failure is recorded on the event and does not stop the batch.
func (r *Relay) RunOnce(ctx context.Context) (RelayStats, error) {
	var stats RelayStats

	release, err := r.locker.Obtain(ctx, relayLockKey, lockTTL)
	if err != nil {
		return stats, err
	}
	defer release()

	ctx, span := r.tracer.Start(ctx, "outbox.relay")
	defer span.End()

	events, err := r.outbox.FetchPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return stats, fmt.Errorf("fetch pending events: %w", err)
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		if err := r.publisher.Publish(ctx, ev); err != nil {
			stats.Failed++
			r.logger.Warn("event publish failed",
				zap.String("event_id", ev.EventID),
				zap.String("event_type", ev.EventType),
				zap.Int64("retry_count", ev.RetryCount+1),
				zap.Error(err),
			)
			if err := r.outbox.MarkFailed(ctx, ev.EventID, err.Error(), r.cfg.MaxRetries); err != nil {
				return stats, fmt.Errorf("mark event %s failed: %w", ev.EventID, err)
			}
			continue
		}

		if err := r.outbox.MarkProcessed(ctx, ev.EventID, r.clock.Now()); err != nil {
			return stats, fmt.Errorf("mark event %s processed: %w", ev.EventID, err)
		}
		stats.Published++
	}

	span.SetAttributes(
		attribute.Int("outbox.published", stats.Published),
		attribute.Int("outbox.failed", stats.Failed),
	)
	if len(events) > 0 {
		r.logger.Info("outbox relay pass",
			zap.Int("published", stats.Published),
			zap.Int("failed", stats.Failed),
		)
	}
	return stats, nil
}

// Cleanup deletes completed and failed events older than their retention.
func (r *Relay) Cleanup(ctx context.Context, completedRetentionDays, failedRetentionDays int) (int64, error) {
	release, err := r.locker.Obtain(ctx, cleanupLockKey, lockTTL)
	if err != nil {
		return 0, err
	}
	defer release()

	now := r.clock.Now()
	completedCutoff := now.AddDate(0, 0, -completedRetentionDays)
	failedCutoff := now.AddDate(0, 0, -failedRetentionDays)

	deleted, err := r.outbox.Cleanup(ctx, completedCutoff, failedCutoff)
	if err != nil {
		return 0, fmt.Errorf("outbox cleanup: %w", err)
	}

	r.logger.Info("outbox cleanup",
		zap.Time("completed_cutoff", completedCutoff),
		zap.Time("failed_cutoff", failedCutoff),
		zap.Int64("deleted", deleted),
	)
	return deleted, nil
}
