package adjust_stock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev domain.DomainEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func TestAdjustStock(t *testing.T) {
	ctx := actor.WithActor(context.Background(), "clerk")
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stamper := domain.NewStamper(clk)

	seed := func(t *testing.T, s *memstore.Store, onHand int64) string {
		t.Helper()
		p, err := domain.NewProduct(domain.NewProductParams{
			SKU:               "SKU-1",
			Name:              "Widget",
			Price:             domain.MustMoney("5.00"),
			StockQuantity:     onHand,
			LowStockThreshold: 5,
			TrackInventory:    true,
		}, stamper.Create(ctx, uuid.New().String()))
		require.NoError(t, err)
		require.NoError(t, s.Products().Create(ctx, p))
		return p.ID()
	}

	t.Run("restock records a movement and an event", func(t *testing.T) {
		s := memstore.New(clk)
		id := seed(t, s, 10)
		notifier := &recordingNotifier{}
		interactor := NewInteractor(s.Products(), s.Ledger(), notifier, stamper, zap.NewNop())

		level, err := interactor.Execute(ctx, &Request{ProductID: id, Delta: 15, Reason: "restock"})
		require.NoError(t, err)
		assert.Equal(t, int64(25), level.StockQuantity)

		moves, err := s.Movements().ListByProduct(ctx, id, 10)
		require.NoError(t, err)
		require.Len(t, moves, 1)
		assert.Equal(t, "restock", moves[0].Reason)
		assert.Equal(t, int64(25), moves[0].StockAfter)

		require.Len(t, notifier.events, 1)
		adjusted := notifier.events[0].(*domain.StockAdjustedEvent)
		assert.Equal(t, int64(15), adjusted.Delta)
		require.NotNil(t, adjusted.AdjustedBy)
		assert.Equal(t, "clerk", *adjusted.AdjustedBy)
	})

	t.Run("drawing down to the threshold raises a low stock alert", func(t *testing.T) {
		s := memstore.New(clk)
		id := seed(t, s, 10)
		notifier := &recordingNotifier{}
		interactor := NewInteractor(s.Products(), s.Ledger(), notifier, stamper, zap.NewNop())

		_, err := interactor.Execute(ctx, &Request{ProductID: id, Delta: -6})
		require.NoError(t, err)

		require.Len(t, notifier.events, 2)
		assert.Equal(t, DefaultReason, notifier.events[0].(*domain.StockAdjustedEvent).Reason)
		assert.Equal(t, domain.EventStockLow, notifier.events[1].EventType())
	})

	t.Run("cannot drop below reserved", func(t *testing.T) {
		s := memstore.New(clk)
		id := seed(t, s, 10)
		_, err := s.Ledger().Reserve(ctx, id, 8)
		require.NoError(t, err)
		interactor := NewInteractor(s.Products(), s.Ledger(), &recordingNotifier{}, stamper, zap.NewNop())

		_, err = interactor.Execute(ctx, &Request{ProductID: id, Delta: -5})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)

		level, err := s.Ledger().Level(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(10), level.StockQuantity)
	})

	t.Run("notifier failure does not fail the adjustment", func(t *testing.T) {
		s := memstore.New(clk)
		id := seed(t, s, 10)
		notifier := &recordingNotifier{err: errors.New("broker down")}
		interactor := NewInteractor(s.Products(), s.Ledger(), notifier, stamper, zap.NewNop())

		level, err := interactor.Execute(ctx, &Request{ProductID: id, Delta: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(11), level.StockQuantity)
	})
}
