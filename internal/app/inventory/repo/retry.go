package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
)

// RetryPolicy bounds the optimistic read-compute-write loop.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// retryOnConflict runs fn until it succeeds, fails with anything other than a
// version conflict, or the attempts are used up. Exhaustion is reported as
// ErrConcurrentModification so callers can retry the whole operation.
func retryOnConflict(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.Backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, committer.ErrVersionConflict) {
			return err
		}
		last = err
	}
	return fmt.Errorf("%w after %d attempts: %v", domain.ErrConcurrentModification, attempts, last)
}
