// Package notify delivers domain events. Events are first written to the outbox;
// the Relay later publishes pending rows to Kafka or, without brokers, to the log.
package notify

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// OutboxNotifier implements contracts.Notifier by queueing events in the outbox.
type OutboxNotifier struct {
	outbox contracts.OutboxRepository
	clock  clock.Clock
}

var _ contracts.Notifier = (*OutboxNotifier)(nil)

func NewOutboxNotifier(outbox contracts.OutboxRepository, clk clock.Clock) *OutboxNotifier {
	return &OutboxNotifier{outbox: outbox, clock: clk}
}

func (n *OutboxNotifier) Notify(ctx context.Context, event domain.DomainEvent) error {
	oe, err := contracts.EnrichEvent(event, n.clock.Now())
	if err != nil {
		return err
	}
	return n.outbox.Insert(ctx, oe)
}
