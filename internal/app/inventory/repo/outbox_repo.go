package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_outbox"
	"github.com/light-bringer/inventory-service/internal/pkg/committer"
	"github.com/light-bringer/inventory-service/internal/pkg/query"
)

// OutboxRepo implements OutboxRepository for Spanner.
type OutboxRepo struct {
	client    *spanner.Client
	committer *committer.Committer
	model     *m_outbox.Model
}

var _ contracts.OutboxRepository = (*OutboxRepo)(nil)

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(client *spanner.Client) *OutboxRepo {
	return &OutboxRepo{
		client:    client,
		committer: committer.NewCommitter(client),
		model:     m_outbox.NewModel(),
	}
}

// InsertMut creates a mutation for inserting an outbox event.
func (r *OutboxRepo) InsertMut(event *contracts.OutboxEvent) *spanner.Mutation {
	return r.model.InsertMut(outboxToData(event))
}

// EventMuts enriches domain events into outbox insert mutations, so they can be
// committed in the same plan as the aggregate that raised them.
func (r *OutboxRepo) EventMuts(events []domain.DomainEvent, now time.Time) ([]*spanner.Mutation, error) {
	muts := make([]*spanner.Mutation, 0, len(events))
	for _, ev := range events {
		enriched, err := contracts.EnrichEvent(ev, now)
		if err != nil {
			return nil, err
		}
		muts = append(muts, r.InsertMut(enriched))
	}
	return muts, nil
}

// Insert writes events in one commit.
func (r *OutboxRepo) Insert(ctx context.Context, events ...*contracts.OutboxEvent) error {
	plan := committer.NewPlan()
	for _, ev := range events {
		plan.Add(r.InsertMut(ev))
	}
	return r.committer.Apply(ctx, plan)
}

// FetchPending returns up to limit pending events, oldest first.
func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]*contracts.OutboxEvent, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.AllColumns...).
		Where(query.Eq(m_outbox.Status, contracts.OutboxPending)).
		OrderBy(m_outbox.CreatedAt, query.Asc).
		Limit(int64(limit)).
		Build()
	return r.query(ctx, stmt)
}

// MarkProcessed marks an event completed.
func (r *OutboxRepo) MarkProcessed(ctx context.Context, eventID string, at time.Time) error {
	plan := committer.NewPlan()
	plan.Add(r.model.CompletedMut(eventID, contracts.OutboxCompleted, at))
	if err := r.committer.Apply(ctx, plan); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return fmt.Errorf("outbox event %s not found", eventID)
		}
		return err
	}
	return nil
}

// MarkFailed bumps the retry count and records the error. The event is failed
// for good once the count reaches maxRetries.
func (r *OutboxRepo) MarkFailed(ctx context.Context, eventID, errMsg string, maxRetries int64) error {
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, m_outbox.TableName, spanner.Key{eventID}, []string{m_outbox.RetryCount})
		if err != nil {
			return fmt.Errorf("failed to read outbox event: %w", err)
		}
		var retries int64
		if err := row.Column(0, &retries); err != nil {
			return fmt.Errorf("failed to parse retry count: %w", err)
		}
		retries++

		status := contracts.OutboxPending
		if retries >= maxRetries {
			status = contracts.OutboxFailed
		}
		return txn.BufferWrite([]*spanner.Mutation{r.model.AttemptMut(eventID, status, retries, errMsg)})
	})
	return err
}

// Cleanup deletes completed and failed events past their retention.
func (r *OutboxRepo) Cleanup(ctx context.Context, completedBefore, failedBefore time.Time) (int64, error) {
	var deleted int64
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		stmt := spanner.Statement{
			SQL: `DELETE FROM outbox_events
				WHERE (status = @completed AND processed_at < @completedBefore)
				   OR (status = @failed AND created_at < @failedBefore)`,
			Params: map[string]interface{}{
				"completed":       contracts.OutboxCompleted,
				"completedBefore": completedBefore,
				"failed":          contracts.OutboxFailed,
				"failedBefore":    failedBefore,
			},
		}
		n, err := txn.Update(ctx, stmt)
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up outbox: %w", err)
	}
	return deleted, nil
}

// List retrieves events with filtering, newest first.
func (r *OutboxRepo) List(ctx context.Context, filter contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	b := query.From(m_outbox.TableName).Select(m_outbox.AllColumns...)
	if filter.EventType != nil {
		b = b.Where(query.Eq(m_outbox.EventType, *filter.EventType))
	}
	if filter.AggregateID != nil {
		b = b.Where(query.Eq(m_outbox.AggregateID, *filter.AggregateID))
	}
	if filter.Status != nil {
		b = b.Where(query.Eq(m_outbox.Status, *filter.Status))
	}
	if filter.Limit > 0 {
		b = b.Limit(filter.Limit)
	}
	return r.query(ctx, b.OrderBy(m_outbox.CreatedAt, query.Desc).Build())
}

func (r *OutboxRepo) query(ctx context.Context, stmt spanner.Statement) ([]*contracts.OutboxEvent, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []*contracts.OutboxEvent
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}

		var data m_outbox.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, dataToOutbox(&data))
	}
	return events, nil
}
