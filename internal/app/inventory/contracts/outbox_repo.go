package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Outbox event statuses.
const (
	OutboxPending   = "pending"
	OutboxCompleted = "completed"
	OutboxFailed    = "failed"
)

// OutboxEvent represents an enriched domain event ready for persistence.
type OutboxEvent struct {
	EventID      string
	EventType    string
	AggregateID  string
	Payload      string // JSON
	Status       string
	RetryCount   int64
	ErrorMessage string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// EnrichEvent serializes a domain event into a pending outbox event.
func EnrichEvent(event domain.DomainEvent, now time.Time) (*OutboxEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return &OutboxEvent{
		EventID:     uuid.New().String(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Payload:     string(data),
		Status:      OutboxPending,
		CreatedAt:   now,
	}, nil
}

// EventFilter narrows an outbox listing. Nil fields match everything.
type EventFilter struct {
	EventType   *string
	AggregateID *string
	Status      *string
	Limit       int64
}

// OutboxRepository stores events for asynchronous delivery.
type OutboxRepository interface {
	Insert(ctx context.Context, events ...*OutboxEvent) error

	// FetchPending returns up to limit pending events, oldest first.
	FetchPending(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkProcessed(ctx context.Context, eventID string, at time.Time) error

	// MarkFailed records a delivery error. The event stays pending until its
	// retry count reaches maxRetries.
	MarkFailed(ctx context.Context, eventID, errMsg string, maxRetries int64) error

	// Cleanup deletes completed events older than completedBefore and failed
	// events older than failedBefore, returning how many were removed.
	Cleanup(ctx context.Context, completedBefore, failedBefore time.Time) (int64, error)

	List(ctx context.Context, filter EventFilter) ([]*OutboxEvent, error)
}

// EventPublisher delivers an outbox event to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *OutboxEvent) error
}
