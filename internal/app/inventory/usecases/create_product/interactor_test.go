package create_product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*memstore.Store, *Interactor) {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := memstore.New(clk)
	return s, NewInteractor(s.Products(), s.Categories(), domain.NewStamper(clk))
}

func TestCreateProduct(t *testing.T) {
	ctx := actor.WithActor(context.Background(), "user-7")

	t.Run("applies defaults and records the creator", func(t *testing.T) {
		s, interactor := setup(t)

		id, err := interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "19.99", StockQuantity: 12})
		require.NoError(t, err)

		p, err := s.Products().Active().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "19.99", p.Price().String())
		assert.Equal(t, int64(12), p.Stock().StockQuantity)
		assert.Equal(t, domain.DefaultLowStockThreshold, p.Stock().LowStockThreshold)
		assert.True(t, p.Stock().TrackInventory)
		require.NotNil(t, p.Audit().CreatedBy)
		assert.Equal(t, "user-7", *p.Audit().CreatedBy)

		events, err := s.Outbox().List(ctx, contracts.EventFilter{AggregateID: ptr(id)})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventProductCreated, events[0].EventType)
	})

	t.Run("rejects malformed money", func(t *testing.T) {
		_, interactor := setup(t)

		_, err := interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "abc"})
		assert.ErrorIs(t, err, domain.ErrInvalidPrice)

		_, err = interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "10", CostPrice: ptr("x")})
		assert.ErrorIs(t, err, domain.ErrInvalidCostPrice)
	})

	t.Run("rejects compare-at price below price", func(t *testing.T) {
		_, interactor := setup(t)

		_, err := interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "10", CompareAtPrice: ptr("9.99")})
		assert.ErrorIs(t, err, domain.ErrInvalidCompareAtPrice)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, interactor := setup(t)

		_, err := interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "10", CategoryID: ptr("missing")})
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	})

	t.Run("rejects duplicate sku", func(t *testing.T) {
		_, interactor := setup(t)

		_, err := interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Widget", Price: "10"})
		require.NoError(t, err)
		_, err = interactor.Execute(ctx, &Request{SKU: "SKU-1", Name: "Other", Price: "11"})
		assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
	})
}
