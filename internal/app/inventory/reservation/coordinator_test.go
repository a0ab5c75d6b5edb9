package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/catalog"
	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// recordingLedger wraps a ledger and records the order of releases. failReserve
// makes Reserve fail for that product with the given error.
type recordingLedger struct {
	contracts.StockLedger
	released    []string
	failReserve map[string]error
}

func (r *recordingLedger) Reserve(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	if err, ok := r.failReserve[productID]; ok {
		return domain.StockLevel{}, err
	}
	return r.StockLedger.Reserve(ctx, productID, qty)
}

func (r *recordingLedger) Release(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	r.released = append(r.released, productID)
	return r.StockLedger.Release(ctx, productID, qty)
}

type env struct {
	store   *memstore.Store
	ledger  *recordingLedger
	coord   *Coordinator
	stamper *domain.Stamper
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := memstore.New(clk)
	ledger := &recordingLedger{StockLedger: s.Ledger(), failReserve: map[string]error{}}
	vis := catalog.NewVisibility(s.Products(), s.Categories(), clk)
	return &env{
		store:   s,
		ledger:  ledger,
		coord:   NewCoordinator(vis, ledger, zap.NewNop()),
		stamper: domain.NewStamper(clk),
	}
}

func (e *env) product(t *testing.T, id string, stock int64, backorders bool) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(domain.NewProductParams{
		SKU:               "SKU-" + id,
		Name:              id,
		Price:             domain.MustMoney("1"),
		StockQuantity:     stock,
		LowStockThreshold: 2,
		TrackInventory:    true,
		AllowBackorders:   backorders,
	}, e.stamper.Create(context.Background(), id))
	require.NoError(t, err)
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *env) reserved(t *testing.T, id string) int64 {
	t.Helper()
	l, err := e.store.Ledger().Level(context.Background(), id)
	require.NoError(t, err)
	return l.ReservedQuantity
}

func TestReserveAll_Success(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 5, false)
	e.product(t, "b", 5, false)

	lines, err := e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "o1", lines[0].OrderID)
	assert.Equal(t, domain.ReservationPending, lines[1].Status)
	assert.Equal(t, int64(2), e.reserved(t, "a"))
	assert.Equal(t, int64(5), e.reserved(t, "b"))
}

func TestReserveAll_InsufficientStockRollsBack(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 5, false)
	e.product(t, "b", 5, false)
	e.product(t, "c", 1, false)

	_, err := e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
		{ProductID: "c", Quantity: 2},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var rerr *ReservationError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "c", rerr.Line.ProductID)
	assert.Equal(t, 2, rerr.Index)
	assert.NoError(t, rerr.RollbackErr)
	assert.Equal(t, "insufficient stock for product c", rerr.Reason())

	var serr *domain.StockError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, int64(1), serr.Available)

	assert.Equal(t, []string{"b", "a"}, e.ledger.released, "released in reverse order")
	for _, id := range []string{"a", "b", "c"} {
		assert.Zero(t, e.reserved(t, id), id)
	}
}

func TestReserveAll_NotPurchasable(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 5, false)
	p := e.product(t, "b", 5, false)
	require.NoError(t, p.Archive(e.stamper.Stamp(context.Background())))
	require.NoError(t, e.store.Products().Update(context.Background(), p))

	_, err := e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotPurchasable)
	assert.Zero(t, e.reserved(t, "a"))
	assert.Zero(t, e.reserved(t, "b"))
}

func TestReserveAll_BackorderBypassesCapacity(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 0, true)

	_, err := e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{{ProductID: "a", Quantity: 4}})
	require.NoError(t, err)

	level, err := e.store.Ledger().Level(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(-4), level.Available())
	assert.True(t, level.IsInStock())
}

func TestReserveAll_CancelledContext(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 5, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.coord.ReserveAll(ctx, "o1", []domain.LineQuantity{{ProductID: "a", Quantity: 1}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.reserved(t, "a"))
}

func TestReserveAll_InfrastructureFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	e.product(t, "a", 5, false)
	e.product(t, "b", 5, false)
	e.ledger.failReserve["b"] = domain.ErrConcurrentModification

	_, err := e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, domain.IsRetryable(err))
	assert.Zero(t, e.reserved(t, "a"))
}

func TestReserveAll_InvalidLines(t *testing.T) {
	e := newEnv(t)
	_, err := e.coord.ReserveAll(context.Background(), "o1", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = e.coord.ReserveAll(context.Background(), "o1", []domain.LineQuantity{
		{ProductID: "a", Quantity: 1},
		{ProductID: "a", Quantity: 1},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderLine)
}
