//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/tests/testutil"
)

func TestStockLedger_ReserveCommitRelease(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("LEDGER-1", "10.00", 10))
	ledger := app.Stores.Ledger

	level, err := ledger.Reserve(ctx, id, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(6), level.ReservedQuantity)

	_, err = ledger.Reserve(ctx, id, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	level, err = ledger.Commit(ctx, id, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), level.StockQuantity)
	assert.Equal(t, int64(2), level.ReservedQuantity)

	level, err = ledger.Release(ctx, id, 2)
	require.NoError(t, err)
	assert.Zero(t, level.ReservedQuantity)

	_, err = ledger.Release(ctx, id, 1)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	stored, err := ledger.Level(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, level, stored)
}

func TestStockLedger_BatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	a := testutil.CreateProduct(t, app, testutil.ProductRequest("BATCH-A", "10.00", 10))
	b := testutil.CreateProduct(t, app, testutil.ProductRequest("BATCH-B", "10.00", 10))
	ledger := app.Stores.Ledger

	_, err := ledger.Reserve(ctx, a, 3)
	require.NoError(t, err)

	_, err = ledger.CommitBatch(ctx, []domain.LineQuantity{{ProductID: a, Quantity: 3}, {ProductID: b, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	level, err := ledger.Level(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(10), level.StockQuantity)
	assert.Equal(t, int64(3), level.ReservedQuantity)
}

func TestStockLedger_ConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("CAS-1", "10.00", 5))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := app.Stores.Ledger.Reserve(ctx, id, 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	level, err := app.Stores.Ledger.Level(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(won), level.ReservedQuantity)
	assert.LessOrEqual(t, level.ReservedQuantity, level.StockQuantity)
}

func TestStockLedger_AdjustRecordsMovement(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("MOVE-1", "10.00", 10))

	_, err := app.Stores.Ledger.Adjust(ctx, id, -4, "damaged")
	require.NoError(t, err)
	_, err = app.Stores.Ledger.Adjust(ctx, id, -7, "shrinkage")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	movements, err := app.Stores.Movements.ListByProduct(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(-4), movements[0].Delta)
	assert.Equal(t, "damaged", movements[0].Reason)
	assert.Equal(t, int64(6), movements[0].StockAfter)
}

func TestStockLedger_StampsAudit(t *testing.T) {
	clk := testutil.NewMockClock()
	app := testutil.NewSpannerApp(t, clk)
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("AUDIT-1", "10.00", 10))
	ctx := actor.WithActor(context.Background(), "admin-7")

	tests := []struct {
		name  string
		write func() error
	}{
		{"adjust", func() error {
			_, err := app.Stores.Ledger.Adjust(ctx, id, 5, "restock")
			return err
		}},
		{"set policy", func() error {
			_, err := app.Stores.Ledger.SetPolicy(ctx, id, 2, true, false)
			return err
		}},
		{"release batch", func() error {
			if _, err := app.Stores.Ledger.Reserve(ctx, id, 1); err != nil {
				return err
			}
			_, err := app.Stores.Ledger.ReleaseBatch(ctx, []domain.LineQuantity{{ProductID: id, Quantity: 1}})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := clk.Advance(time.Hour)
			require.NoError(t, tt.write())

			p, err := app.Stores.Products.All().Get(context.Background(), id)
			require.NoError(t, err)
			assert.True(t, at.Equal(p.Audit().UpdatedAt))
			require.NotNil(t, p.Audit().UpdatedBy)
			assert.Equal(t, "admin-7", *p.Audit().UpdatedBy)
		})
	}
}

func TestStockLedger_ReserveRefusesArchived(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	id := testutil.CreateProduct(t, app, testutil.ProductRequest("ARCH-1", "10.00", 10))
	stamper := domain.NewStamper(testutil.NewMockClock())

	_, err := app.Stores.Ledger.Reserve(ctx, id, 2)
	require.NoError(t, err)

	p, err := app.Stores.Products.All().Get(ctx, id)
	require.NoError(t, err)
	require.NoError(t, p.Archive(stamper.Stamp(ctx)))
	require.NoError(t, app.Stores.Products.Update(ctx, p))

	_, err = app.Stores.Ledger.Reserve(ctx, id, 1)
	require.ErrorIs(t, err, domain.ErrProductNotPurchasable)

	level, err := app.Stores.Ledger.Release(ctx, id, 2)
	require.NoError(t, err)
	assert.Zero(t, level.ReservedQuantity)
}

func TestOrderRepo_SettleIsAtomic(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewSpannerApp(t, testutil.NewMockClock())
	a := testutil.CreateProduct(t, app, testutil.ProductRequest("SETTLE-A", "10.00", 10))
	b := testutil.CreateProduct(t, app, testutil.ProductRequest("SETTLE-B", "10.00", 10))
	order := testutil.CreateOrder(t, app, testutil.Line(a, 2), testutil.Line(b, 1))

	_, err := app.Orders.Submit(ctx, order.ID())
	require.NoError(t, err)

	t.Run("failing line keeps order and stock", func(t *testing.T) {
		_, err := app.Stores.Ledger.Release(ctx, b, 1)
		require.NoError(t, err)

		_, err = app.Orders.Fulfill(ctx, order.ID())
		require.ErrorIs(t, err, domain.ErrInvariantViolation)

		stored, err := app.Stores.Orders.Get(ctx, order.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.OrderReserved, stored.Status())
		assert.Equal(t, int64(2), testutil.Level(t, app, a).ReservedQuantity)
		assert.Equal(t, int64(10), testutil.Level(t, app, a).StockQuantity)
	})

	t.Run("cancel releases with the order", func(t *testing.T) {
		_, err := app.Stores.Ledger.Reserve(ctx, b, 1)
		require.NoError(t, err)

		cancelled, err := app.Orders.Cancel(ctx, order.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, cancelled.Status())
		assert.Zero(t, testutil.Level(t, app, a).ReservedQuantity)
		assert.Zero(t, testutil.Level(t, app, b).ReservedQuantity)
	})
}
