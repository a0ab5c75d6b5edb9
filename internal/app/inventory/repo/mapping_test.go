package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_order_line"
	"github.com/light-bringer/inventory-service/internal/models/m_product"
	"github.com/light-bringer/inventory-service/internal/models/m_reservation"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func newProduct(t *testing.T, stamper *domain.Stamper) *domain.Product {
	t.Helper()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cat := "cat-1"
	p, err := domain.NewProduct(domain.NewProductParams{
		SKU:               "SKU-1",
		Name:              "Widget",
		CategoryID:        &cat,
		Price:             domain.MustMoney("735.55"),
		CompareAtPrice:    domain.MustMoney("899.99"),
		CostPrice:         domain.MustMoney("650.00"),
		StockQuantity:     20,
		LowStockThreshold: 5,
		TrackInventory:    true,
		AvailableFrom:     &from,
	}, stamper.Create(actor.WithActor(context.Background(), "admin"), "p-1"))
	require.NoError(t, err)
	return p
}

func TestProductDataRoundTrip(t *testing.T) {
	stamper := domain.NewStamper(clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	p := newProduct(t, stamper)

	got, err := dataToProduct(productToData(p.State()))
	require.NoError(t, err)

	want := p.State()
	have := got.State()
	assert.Equal(t, want.Audit, have.Audit)
	assert.Equal(t, want.SKU, have.SKU)
	assert.Equal(t, want.CategoryID, have.CategoryID)
	assert.Equal(t, want.Stock, have.Stock)
	assert.Equal(t, want.AvailableFrom, have.AvailableFrom)
	assert.Nil(t, have.AvailableUntil)
	assert.Equal(t, "735.55", have.Price.String())
	assert.Equal(t, "899.99", have.CompareAtPrice.String())
	assert.Equal(t, "650.00", have.CostPrice.String())
	assert.Equal(t, "18.27", got.Derived().DiscountPercentage.StringFixed(2))
}

func TestUpdateColumns(t *testing.T) {
	ctx := context.Background()
	stamper := domain.NewStamper(clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	t.Run("nothing dirty", func(t *testing.T) {
		p := newProduct(t, stamper)
		p.MarkPersisted()
		assert.Nil(t, UpdateColumns(p))
	})

	t.Run("pricing change never touches ledger columns", func(t *testing.T) {
		p := newProduct(t, stamper)
		p.MarkPersisted()
		require.NoError(t, p.UpdatePricing(domain.MustMoney("700"), nil, nil, stamper.Stamp(ctx)))

		cols := UpdateColumns(p)
		require.NotNil(t, cols)
		assert.Contains(t, cols, m_product.Price)
		assert.Contains(t, cols, m_product.CompareAtPrice)
		assert.Contains(t, cols, m_product.UpdatedAt)
		for _, stock := range m_product.StockColumns {
			assert.NotContains(t, cols, stock)
		}
	})

	t.Run("archive writes is_active", func(t *testing.T) {
		p := newProduct(t, stamper)
		p.MarkPersisted()
		require.NoError(t, p.Archive(stamper.Stamp(ctx)))

		cols := UpdateColumns(p)
		assert.Equal(t, false, cols[m_product.IsActive])
		assert.NotContains(t, cols, m_product.Price)
	})
}

func TestOrderDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	stamper := domain.NewStamper(clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

	o, err := domain.NewOrder("ORD-20260301-ABCDE", []domain.OrderLine{
		{ProductID: "a", Quantity: 2, UnitPrice: domain.MustMoney("1.25")},
		{ProductID: "b", Quantity: 1},
	}, stamper.Create(ctx, "o-1"))
	require.NoError(t, err)
	require.NoError(t, o.MarkReserved([]domain.ReservationLine{
		{OrderID: "o-1", ProductID: "a", Quantity: 2, Status: domain.ReservationPending},
		{OrderID: "o-1", ProductID: "b", Quantity: 1, Status: domain.ReservationPending},
	}, stamper.Stamp(ctx)))

	st := o.State()
	var lines []*m_order_line.Data
	for i, l := range st.Lines {
		lines = append(lines, lineToData(st.Audit.ID, i, l))
	}
	var reservations []*m_reservation.Data
	for _, r := range st.Reservations {
		reservations = append(reservations, reservationToData(r))
	}

	got, err := dataToOrder(orderToData(st), lines, reservations)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReserved, got.Status())
	assert.Equal(t, st.Number, got.Number())
	assert.Equal(t, st.Reservations, got.Reservations())
	assert.Equal(t, o.Quantities(), got.Quantities())
	assert.Equal(t, "3.50", got.Total().String())
}

func TestOutboxDataRoundTrip(t *testing.T) {
	ev, err := contracts.EnrichEvent(&domain.ProductArchivedEvent{ProductID: "p-1"}, time.Now())
	require.NoError(t, err)

	data := outboxToData(ev)
	assert.True(t, data.Payload.Valid)
	assert.Equal(t, contracts.OutboxPending, data.Status)
	assert.False(t, data.ErrorMessage.Valid)
}

func TestNextStock(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(created)
	stamper := domain.NewStamper(clk)
	cur := &m_product.StockData{
		StockQuantity:     10,
		ReservedQuantity:  2,
		LowStockThreshold: 3,
		TrackInventory:    true,
		Version:           4,
		IsActive:          true,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	level := domain.StockLevel{StockQuantity: 10, ReservedQuantity: 5, LowStockThreshold: 3, TrackInventory: true}

	t.Run("stamps actor and time", func(t *testing.T) {
		at := clk.Advance(time.Hour)
		ctx := actor.WithActor(context.Background(), "admin-7")

		next := nextStock(cur, level, stamper.Stamp(ctx))
		assert.Equal(t, int64(5), next.ReservedQuantity)
		assert.Equal(t, int64(5), next.Version)
		assert.True(t, at.Equal(next.UpdatedAt))
		assert.True(t, next.UpdatedBy.Valid)
		assert.Equal(t, "admin-7", next.UpdatedBy.StringVal)
		assert.True(t, created.Equal(next.CreatedAt))
	})

	t.Run("system change clears updated_by", func(t *testing.T) {
		next := nextStock(cur, level, stamper.Stamp(context.Background()))
		assert.False(t, next.UpdatedBy.Valid)
	})

	t.Run("never stamps before creation", func(t *testing.T) {
		early := domain.Stamp{At: created.Add(-time.Minute)}
		next := nextStock(cur, level, early)
		assert.True(t, created.Equal(next.UpdatedAt))
	})
}
