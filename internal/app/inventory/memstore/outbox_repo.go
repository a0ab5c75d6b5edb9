package memstore

import (
	"context"
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
)

// OutboxRepo implements contracts.OutboxRepository in memory.
type OutboxRepo struct {
	s *Store
}

var _ contracts.OutboxRepository = (*OutboxRepo)(nil)

func (r *OutboxRepo) Insert(_ context.Context, events ...*contracts.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ev := range events {
		cp := *ev
		r.s.outbox = append(r.s.outbox, &cp)
	}
	return nil
}

func (r *OutboxRepo) FetchPending(_ context.Context, limit int) ([]*contracts.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*contracts.OutboxEvent
	for _, ev := range r.s.outbox {
		if ev.Status != contracts.OutboxPending {
			continue
		}
		cp := *ev
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkProcessed(_ context.Context, eventID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ev := r.find(eventID); ev != nil {
		ev.Status = contracts.OutboxCompleted
		ev.ProcessedAt = &at
	}
	return nil
}

func (r *OutboxRepo) MarkFailed(_ context.Context, eventID, errMsg string, maxRetries int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ev := r.find(eventID); ev != nil {
		ev.RetryCount++
		ev.ErrorMessage = errMsg
		if ev.RetryCount >= maxRetries {
			ev.Status = contracts.OutboxFailed
		}
	}
	return nil
}

func (r *OutboxRepo) Cleanup(_ context.Context, completedBefore, failedBefore time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.outbox[:0]
	var removed int64
	for _, ev := range r.s.outbox {
		switch {
		case ev.Status == contracts.OutboxCompleted && ev.ProcessedAt != nil && ev.ProcessedAt.Before(completedBefore),
			ev.Status == contracts.OutboxFailed && ev.CreatedAt.Before(failedBefore):
			removed++
		default:
			kept = append(kept, ev)
		}
	}
	r.s.outbox = kept
	return removed, nil
}

// List returns matching events, newest first.
func (r *OutboxRepo) List(_ context.Context, filter contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*contracts.OutboxEvent
	for i := len(r.s.outbox) - 1; i >= 0; i-- {
		ev := r.s.outbox[i]
		if filter.EventType != nil && ev.EventType != *filter.EventType {
			continue
		}
		if filter.AggregateID != nil && ev.AggregateID != *filter.AggregateID {
			continue
		}
		if filter.Status != nil && ev.Status != *filter.Status {
			continue
		}
		cp := *ev
		out = append(out, &cp)
		if filter.Limit > 0 && int64(len(out)) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepo) find(eventID string) *contracts.OutboxEvent {
	for _, ev := range r.s.outbox {
		if ev.EventID == eventID {
			return ev
		}
	}
	return nil
}
