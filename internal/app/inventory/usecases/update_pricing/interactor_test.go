package update_pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func ptr[T any](v T) *T { return &v }

func TestUpdatePricing(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stamper := domain.NewStamper(clk)

	seed := func(t *testing.T, s *memstore.Store) *domain.Product {
		t.Helper()
		p, err := domain.NewProduct(domain.NewProductParams{
			SKU:               "SKU-1",
			Name:              "Widget",
			Price:             domain.MustMoney("20.00"),
			StockQuantity:     5,
			LowStockThreshold: 2,
			TrackInventory:    true,
		}, stamper.Create(ctx, uuid.New().String()))
		require.NoError(t, err)
		require.NoError(t, s.Products().Create(ctx, p))
		return p
	}

	t.Run("replaces pricing and keeps stock", func(t *testing.T) {
		s := memstore.New(clk)
		p := seed(t, s)
		_, err := s.Ledger().Reserve(ctx, p.ID(), 3)
		require.NoError(t, err)

		interactor := NewInteractor(s.Products(), stamper)
		err = interactor.Execute(ctx, &Request{ProductID: p.ID(), Price: "16.35", CompareAtPrice: ptr("20.00"), CostPrice: ptr("12.00")})
		require.NoError(t, err)

		got, err := s.Products().All().Get(ctx, p.ID())
		require.NoError(t, err)
		assert.Equal(t, "16.35", got.Price().String())
		assert.Equal(t, "18.25", got.Derived().DiscountPercentage.StringFixed(2))
		assert.Equal(t, int64(3), got.Stock().ReservedQuantity)

		events, err := s.Outbox().List(ctx, contracts.EventFilter{EventType: ptr(domain.EventProductPricingChanged)})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("rejects archived product", func(t *testing.T) {
		s := memstore.New(clk)
		p := seed(t, s)
		require.NoError(t, p.Archive(stamper.Stamp(ctx)))
		require.NoError(t, s.Products().Update(ctx, p))

		err := NewInteractor(s.Products(), stamper).Execute(ctx, &Request{ProductID: p.ID(), Price: "10"})
		assert.ErrorIs(t, err, domain.ErrCannotModifyArchived)
	})

	t.Run("unknown product", func(t *testing.T) {
		s := memstore.New(clk)
		err := NewInteractor(s.Products(), stamper).Execute(ctx, &Request{ProductID: "nope", Price: "10"})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
