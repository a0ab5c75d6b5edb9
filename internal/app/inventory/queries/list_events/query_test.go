package list_events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

type limitSpy struct {
	contracts.OutboxRepository
	filter contracts.EventFilter
}

func (l *limitSpy) List(ctx context.Context, filter contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	l.filter = filter
	return l.OutboxRepository.List(ctx, filter)
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := memstore.New(clk)

	for _, id := range []string{"a", "b"} {
		ev, err := contracts.EnrichEvent(&domain.ProductArchivedEvent{ProductID: id, ArchivedAt: clk.Now()}, clk.Now())
		require.NoError(t, err)
		require.NoError(t, s.Outbox().Insert(ctx, ev))
	}

	spy := &limitSpy{OutboxRepository: s.Outbox()}
	query := NewQuery(spy)

	t.Run("defaults the limit", func(t *testing.T) {
		events, err := query.Execute(ctx, &Request{})
		require.NoError(t, err)
		assert.Len(t, events, 2)
		assert.Equal(t, int64(defaultLimit), spy.filter.Limit)
	})

	t.Run("caps the limit", func(t *testing.T) {
		_, err := query.Execute(ctx, &Request{Limit: 5000})
		require.NoError(t, err)
		assert.Equal(t, int64(maxLimit), spy.filter.Limit)
	})

	t.Run("filters by aggregate", func(t *testing.T) {
		id := "b"
		events, err := query.Execute(ctx, &Request{AggregateID: &id})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventProductArchived, events[0].EventType)
	})
}
