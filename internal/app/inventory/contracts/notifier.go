package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Notifier publishes an event after a state change has been persisted.
// Publication is fire-and-forget: callers log a returned error and never roll
// back the change that produced the event.
type Notifier interface {
	Notify(ctx context.Context, event domain.DomainEvent) error
}
