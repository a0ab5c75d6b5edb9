package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/catalog"
	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/reservation"
	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedProduct(t *testing.T, s *Store, id, sku string, stock int64, mutate ...func(*domain.NewProductParams)) *domain.Product {
	t.Helper()
	params := domain.NewProductParams{
		SKU:               sku,
		Name:              "Product " + sku,
		Price:             domain.MustMoney("10.00"),
		StockQuantity:     stock,
		LowStockThreshold: domain.DefaultLowStockThreshold,
		TrackInventory:    true,
	}
	for _, m := range mutate {
		m(&params)
	}
	p, err := domain.NewProduct(params, s.stamper.Create(context.Background(), id))
	require.NoError(t, err)
	require.NoError(t, s.Products().Create(context.Background(), p))
	return p
}

func TestLedger_NoOversellUnderConcurrency(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	seedProduct(t, s, "p1", "SKU-1", 10)
	ledger := s.Ledger()

	var wg sync.WaitGroup
	var ok, rejected atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), "p1", 1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok.Load())
	assert.Equal(t, int64(40), rejected.Load())

	level, err := ledger.Level(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), level.ReservedQuantity)
	assert.Equal(t, int64(0), level.Available())
}

func TestLedger_BatchIsAllOrNothing(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	seedProduct(t, s, "p1", "SKU-1", 5)
	seedProduct(t, s, "p2", "SKU-2", 5)
	ledger := s.Ledger()
	ctx := context.Background()

	_, err := ledger.Reserve(ctx, "p1", 2)
	require.NoError(t, err)
	_, err = ledger.Reserve(ctx, "p2", 1)
	require.NoError(t, err)

	t.Run("one bad line rejects the batch", func(t *testing.T) {
		_, err := ledger.ReleaseBatch(ctx, []domain.LineQuantity{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		})
		require.ErrorIs(t, err, domain.ErrInvariantViolation)

		l1, _ := ledger.Level(ctx, "p1")
		assert.Equal(t, int64(2), l1.ReservedQuantity, "first line must not be applied")
	})

	t.Run("commit applies every line", func(t *testing.T) {
		levels, err := ledger.CommitBatch(ctx, []domain.LineQuantity{
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p1", Quantity: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), levels["p1"].StockQuantity)
		assert.Equal(t, int64(0), levels["p1"].ReservedQuantity)
		assert.Equal(t, int64(4), levels["p2"].StockQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := ledger.CommitBatch(ctx, []domain.LineQuantity{{ProductID: "nope", Quantity: 1}})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestLedger_LockHonoursContext(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	seedProduct(t, s, "p1", "SKU-1", 5)

	unlock, err := s.locks.Lock(context.Background(), productKey("p1"))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Ledger().Reserve(ctx, "p1", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLedger_AdjustRecordsMovement(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	seedProduct(t, s, "p1", "SKU-1", 5)
	ctx := actor.WithActor(context.Background(), "warehouse-7")

	level, err := s.Ledger().Adjust(ctx, "p1", 7, "restock")
	require.NoError(t, err)
	assert.Equal(t, int64(12), level.StockQuantity)

	_, err = s.Ledger().Adjust(ctx, "p1", -20, "shrinkage")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	moves, err := s.Movements().ListByProduct(ctx, "p1", 10)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "restock", moves[0].Reason)
	assert.Equal(t, int64(12), moves[0].StockAfter)
	require.NotNil(t, moves[0].CreatedBy)
	assert.Equal(t, "warehouse-7", *moves[0].CreatedBy)
}

func TestLedger_MovementsFollowCommitOrder(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	seedProduct(t, s, "p1", "SKU-1", 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Ledger().Adjust(ctx, "p1", 1, "restock")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	moves, err := s.Movements().ListByProduct(ctx, "p1", 0)
	require.NoError(t, err)
	require.Len(t, moves, 40)
	for i, mv := range moves {
		assert.Equal(t, int64(45-i), mv.StockAfter, "movement %d", i)
	}
}

func TestLedger_StampsAudit(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	s := New(clk)
	seedProduct(t, s, "p1", "SKU-1", 5)
	seedProduct(t, s, "p2", "SKU-2", 5)
	ctx := actor.WithActor(context.Background(), "admin-7")

	updated := func(t *testing.T, id string) domain.Audit {
		t.Helper()
		p, err := s.Products().All().Get(context.Background(), id)
		require.NoError(t, err)
		return p.Audit()
	}

	tests := []struct {
		name  string
		id    string
		write func() error
	}{
		{"adjust", "p1", func() error {
			_, err := s.Ledger().Adjust(ctx, "p1", 3, "restock")
			return err
		}},
		{"set policy", "p1", func() error {
			_, err := s.Ledger().SetPolicy(ctx, "p1", 2, true, true)
			return err
		}},
		{"reserve", "p2", func() error {
			_, err := s.Ledger().Reserve(ctx, "p2", 2)
			return err
		}},
		{"commit batch", "p2", func() error {
			_, err := s.Ledger().CommitBatch(ctx, []domain.LineQuantity{{ProductID: "p2", Quantity: 2}})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := clk.Advance(time.Hour)
			require.NoError(t, tt.write())

			audit := updated(t, tt.id)
			assert.True(t, at.Equal(audit.UpdatedAt))
			require.NotNil(t, audit.UpdatedBy)
			assert.Equal(t, "admin-7", *audit.UpdatedBy)
			assert.True(t, testNow.Equal(audit.CreatedAt))
		})
	}
}

func TestLedger_ReserveRefusesArchived(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	p := seedProduct(t, s, "p1", "SKU-1", 5)
	ctx := context.Background()

	_, err := s.Ledger().Reserve(ctx, "p1", 2)
	require.NoError(t, err)

	require.NoError(t, p.Archive(s.stamper.Stamp(ctx)))
	require.NoError(t, s.Products().Update(ctx, p))

	_, err = s.Ledger().Reserve(ctx, "p1", 1)
	require.ErrorIs(t, err, domain.ErrProductNotPurchasable)

	// Existing reservations can still be settled.
	level, err := s.Ledger().Release(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Zero(t, level.ReservedQuantity)
}

func TestCoordinator_DeadlineReleasesEarlierLines(t *testing.T) {
	clk := clock.NewMockClock(testNow)
	s := New(clk)
	seedProduct(t, s, "p1", "SKU-1", 5)
	seedProduct(t, s, "p2", "SKU-2", 5)
	coord := reservation.NewCoordinator(catalog.NewVisibility(s.Products(), s.Categories(), clk), s.Ledger(), zap.NewNop())

	unlock, err := s.locks.Lock(context.Background(), productKey("p2"))
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = coord.ReserveAll(ctx, "o1", []domain.LineQuantity{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var rerr *reservation.ReservationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Index)
	assert.NoError(t, rerr.RollbackErr)
	assert.Equal(t, "reservation timed out", rerr.Reason())

	level, err := s.Ledger().Level(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, level.ReservedQuantity)
	assert.Equal(t, int64(5), level.Available())
}

func TestProductStore_UpdateKeepsLedgerState(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	p := seedProduct(t, s, "p1", "SKU-1", 5)
	ctx := context.Background()

	// Reserve after the aggregate was loaded; the stale stock on p must not win.
	_, err := s.Ledger().Reserve(ctx, "p1", 3)
	require.NoError(t, err)

	require.NoError(t, p.UpdatePricing(domain.MustMoney("12.00"), nil, nil, s.stamper.Stamp(ctx)))
	require.NoError(t, s.Products().Update(ctx, p))

	got, err := s.Products().Active().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.Price().String())
	assert.Equal(t, int64(3), got.Stock().ReservedQuantity)
	assert.Equal(t, int64(1), got.Version())
}

func TestProductStore_Views(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	ctx := context.Background()
	p := seedProduct(t, s, "p1", "SKU-1", 5)
	seedProduct(t, s, "p2", "SKU-2", 50)

	dup, err := domain.NewProduct(domain.NewProductParams{SKU: "SKU-1", Name: "dup", Price: domain.MustMoney("1")}, s.stamper.Create(ctx, "p3"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Products().Create(ctx, dup), domain.ErrDuplicateSKU)

	require.NoError(t, p.Archive(s.stamper.Stamp(ctx)))
	require.NoError(t, s.Products().Update(ctx, p))

	_, err = s.Products().Active().Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	archived, err := s.Products().All().Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, archived.IsActive())

	page, err := s.Products().Active().List(ctx, contracts.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "SKU-2", page.Products[0].SKU())

	page, err = s.Products().All().List(ctx, contracts.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)

	bySKU, err := s.Products().All().GetBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", bySKU.ID())
}

func TestProductStore_ListPaging(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedProduct(t, s, fmt.Sprintf("p%d", i), fmt.Sprintf("SKU-%d", i), int64(i))
	}

	var skus []string
	token := ""
	for {
		page, err := s.Products().Active().List(ctx, contracts.ProductFilter{PageSize: 2, PageToken: token})
		require.NoError(t, err)
		for _, p := range page.Products {
			skus = append(skus, p.SKU())
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	assert.Equal(t, []string{"SKU-0", "SKU-1", "SKU-2", "SKU-3", "SKU-4"}, skus)

	low, err := s.Products().Active().List(ctx, contracts.ProductFilter{LowStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, low.Products, 4, "SKU-0 is out of stock, not low")
}

func TestOrderRepo_OptimisticSave(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	ctx := context.Background()
	o, err := domain.NewOrder("ORD-1", []domain.OrderLine{{ProductID: "p1", Quantity: 1}}, s.stamper.Create(ctx, "o1"))
	require.NoError(t, err)
	require.NoError(t, s.Orders().Create(ctx, o))
	assert.ErrorIs(t, s.Orders().Create(ctx, o), domain.ErrDuplicateOrderNo)

	a, _ := s.Orders().Get(ctx, "o1")
	b, _ := s.Orders().Get(ctx, "o1")

	require.NoError(t, a.MarkCancelled(s.stamper.Stamp(ctx)))
	require.NoError(t, s.Orders().Save(ctx, a))
	assert.Equal(t, int64(2), a.Version())

	require.NoError(t, b.MarkCancelled(s.stamper.Stamp(ctx)))
	assert.ErrorIs(t, s.Orders().Save(ctx, b), domain.ErrConcurrentModification)
}

func TestOrderRepo_Settle(t *testing.T) {
	ctx := actor.WithActor(context.Background(), "picker-3")
	clk := clock.NewMockClock(testNow)
	s := New(clk)
	seedProduct(t, s, "p1", "SKU-1", 20)
	seedProduct(t, s, "p2", "SKU-2", 20)
	lines := []domain.LineQuantity{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	reserved := func(t *testing.T, id string) *domain.Order {
		t.Helper()
		o, err := domain.NewOrder("ORD-"+id, []domain.OrderLine{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		}, s.stamper.Create(ctx, id))
		require.NoError(t, err)
		require.NoError(t, s.Orders().Create(ctx, o))
		for _, l := range lines {
			_, err := s.Ledger().Reserve(ctx, l.ProductID, l.Quantity)
			require.NoError(t, err)
		}
		require.NoError(t, o.MarkReserved([]domain.ReservationLine{
			{OrderID: id, ProductID: "p1", Quantity: 2, Status: domain.ReservationPending},
			{OrderID: id, ProductID: "p2", Quantity: 1, Status: domain.ReservationPending},
		}, s.stamper.Stamp(ctx)))
		require.NoError(t, s.Orders().Save(ctx, o))
		return o
	}

	t.Run("order and stock move together", func(t *testing.T) {
		o := reserved(t, "o1")
		at := clk.Advance(time.Minute)
		require.NoError(t, o.MarkFulfilled(s.stamper.Stamp(ctx)))

		levels, err := s.Orders().Settle(ctx, o, domain.OpCommit, lines)
		require.NoError(t, err)
		assert.Equal(t, int64(18), levels["p1"].StockQuantity)
		assert.Equal(t, int64(3), o.Version())

		stored, err := s.Orders().Get(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderFulfilled, stored.Status())

		p, err := s.Products().All().Get(ctx, "p2")
		require.NoError(t, err)
		assert.True(t, at.Equal(p.Audit().UpdatedAt))
		assert.Equal(t, "picker-3", *p.Audit().UpdatedBy)
	})

	t.Run("stale order writes no stock", func(t *testing.T) {
		o := reserved(t, "o2")
		other, err := s.Orders().Get(ctx, "o2")
		require.NoError(t, err)
		require.NoError(t, other.MarkCancelled(s.stamper.Stamp(ctx)))
		require.NoError(t, s.Orders().Save(ctx, other))

		before, err := s.Ledger().Level(ctx, "p1")
		require.NoError(t, err)

		require.NoError(t, o.MarkCancelled(s.stamper.Stamp(ctx)))
		_, err = s.Orders().Settle(ctx, o, domain.OpRelease, lines)
		require.ErrorIs(t, err, domain.ErrConcurrentModification)

		after, err := s.Ledger().Level(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("failing line writes no order", func(t *testing.T) {
		o := reserved(t, "o3")
		require.NoError(t, o.MarkCancelled(s.stamper.Stamp(ctx)))

		_, err := s.Orders().Settle(ctx, o, domain.OpRelease, []domain.LineQuantity{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 50},
		})
		require.ErrorIs(t, err, domain.ErrInvariantViolation)

		stored, err := s.Orders().Get(ctx, "o3")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderReserved, stored.Status())
	})
}

func TestOutboxRepo_Lifecycle(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	ctx := context.Background()
	seedProduct(t, s, "p1", "SKU-1", 5)

	pending, err := s.Outbox().FetchPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EventProductCreated, pending[0].EventType)

	require.NoError(t, s.Outbox().MarkFailed(ctx, pending[0].EventID, "broker down", 2))
	pending, _ = s.Outbox().FetchPending(ctx, 10)
	require.Len(t, pending, 1, "still retryable")

	require.NoError(t, s.Outbox().MarkFailed(ctx, pending[0].EventID, "broker down", 2))
	pending, _ = s.Outbox().FetchPending(ctx, 10)
	assert.Empty(t, pending)

	failed := contracts.OutboxFailed
	listed, err := s.Outbox().List(ctx, contracts.EventFilter{Status: &failed})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(2), listed[0].RetryCount)

	removed, err := s.Outbox().Cleanup(ctx, testNow.Add(time.Hour), testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestCategoryRepo_Tree(t *testing.T) {
	s := New(clock.NewMockClock(testNow))
	ctx := context.Background()

	root, err := domain.NewCategory("Root", nil, 0, s.stamper.Create(ctx, "root"))
	require.NoError(t, err)
	require.NoError(t, s.Categories().Create(ctx, root))
	parent := "root"
	child, err := domain.NewCategory("Child", &parent, 0, s.stamper.Create(ctx, "child"))
	require.NoError(t, err)
	require.NoError(t, s.Categories().Create(ctx, child))

	require.NoError(t, root.Deactivate(s.stamper.Stamp(ctx)))
	require.NoError(t, s.Categories().Update(ctx, root))

	tree, err := s.Categories().Tree(ctx)
	require.NoError(t, err)
	assert.False(t, tree.IsVisible("child"))
	assert.Equal(t, []string{"child"}, tree.Children("root"))
}
