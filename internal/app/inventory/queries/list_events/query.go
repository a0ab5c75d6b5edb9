package list_events

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Request contains filtering parameters for listing events.
type Request struct {
	EventType   *string // e.g. "product.created"
	AggregateID *string
	Status      *string // "pending", "completed" or "failed"
	Limit       int64
}

// Query handles the list events query use case.
type Query struct {
	outbox contracts.OutboxRepository
}

// NewQuery creates a new list events query.
func NewQuery(outbox contracts.OutboxRepository) *Query {
	return &Query{
		outbox: outbox,
	}
}

// Execute retrieves outbox events, newest first.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.OutboxEvent, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return q.outbox.List(ctx, contracts.EventFilter{
		EventType:   req.EventType,
		AggregateID: req.AggregateID,
		Status:      req.Status,
		Limit:       limit,
	})
}
