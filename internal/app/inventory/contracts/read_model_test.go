package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func TestToProductDTO(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := actor.WithActor(context.Background(), "admin-1")

	p, err := domain.NewProduct(domain.NewProductParams{
		SKU:               "SKU-1",
		Name:              "Laptop",
		Price:             domain.MustMoney("735.55"),
		CompareAtPrice:    domain.MustMoney("899.99"),
		StockQuantity:     8,
		LowStockThreshold: 10,
		TrackInventory:    true,
	}, domain.NewStamper(clk).Create(ctx, "p1"))
	require.NoError(t, err)

	dto := ToProductDTO(p)

	assert.Equal(t, "735.55", dto.Price)
	assert.Equal(t, "18.27", dto.DiscountPercentage)
	assert.Nil(t, dto.ProfitMargin, "absent cost stays absent")
	assert.Nil(t, dto.CostPrice)
	assert.Equal(t, int64(8), dto.AvailableQuantity)
	assert.True(t, dto.IsLowStock)
	assert.True(t, dto.IsActive)
	require.NotNil(t, dto.CreatedBy)
	assert.Equal(t, "admin-1", *dto.CreatedBy)
}

func TestToOrderDTO(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s := domain.NewStamper(clk)
	o, err := domain.NewOrder("ORD-20260301-ABCDE", []domain.OrderLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: domain.MustMoney("3.25")},
	}, s.Create(context.Background(), "o1"))
	require.NoError(t, err)
	require.NoError(t, o.MarkReserved([]domain.ReservationLine{{ProductID: "p1", Quantity: 2}}, s.Stamp(context.Background())))

	dto := ToOrderDTO(o)

	assert.Equal(t, "RESERVED", dto.Status)
	assert.Equal(t, "6.50", dto.Total)
	require.Len(t, dto.Lines, 1)
	require.NotNil(t, dto.Lines[0].ReservationStatus)
	assert.Equal(t, "pending", *dto.Lines[0].ReservationStatus)
}
