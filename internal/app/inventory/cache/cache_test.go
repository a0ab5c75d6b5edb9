package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/catalog"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/app/inventory/reservation"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mapCache struct {
	mu       sync.Mutex
	entries  map[string]domain.ProductState
	gets     int
	hits     int
	readErr  error
	invalids []string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]domain.ProductState)}
}

func (c *mapCache) Get(_ context.Context, id string) (*domain.ProductState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	st, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &st, true, nil
}

func (c *mapCache) Set(_ context.Context, st domain.ProductState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[st.Audit.ID] = st
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
	}
	c.invalids = append(c.invalids, ids...)
	return nil
}

func (c *mapCache) has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

func setup(t *testing.T) (*memstore.Store, *ProductStore, *Ledger, *mapCache, *domain.Stamper) {
	t.Helper()
	clk := clock.NewMockClock(testNow)
	s := memstore.New(clk)
	c := newMapCache()
	products := NewProductStore(s.Products(), c, zap.NewNop())
	ledger := NewLedger(s.Ledger(), c, zap.NewNop())
	return s, products, ledger, c, domain.NewStamper(clk)
}

func createProduct(t *testing.T, store *ProductStore, stamper *domain.Stamper, id string, stock int64) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(domain.NewProductParams{
		SKU:               "SKU-" + id,
		Name:              "Product " + id,
		Price:             domain.MustMoney("735.55"),
		CompareAtPrice:    domain.MustMoney("899.99"),
		StockQuantity:     stock,
		LowStockThreshold: domain.DefaultLowStockThreshold,
		TrackInventory:    true,
	}, stamper.Create(context.Background(), id))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), p))
	return p
}

func TestProductStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	_, store, _, c, stamper := setup(t)
	createProduct(t, store, stamper, "p1", 20)

	first, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, c.has("p1"))

	second, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, first.Price().String(), second.Price().String())
	assert.Equal(t, "18.27", second.Derived().DiscountPercentage.StringFixed(2))
}

func TestProductStore_ArchivedHiddenFromActiveView(t *testing.T) {
	ctx := context.Background()
	_, store, _, c, stamper := setup(t)
	createProduct(t, store, stamper, "p1", 5)

	_, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)

	p, err := store.All().Get(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, p.Archive(stamper.Stamp(ctx)))
	require.NoError(t, store.Update(ctx, p))
	assert.Contains(t, c.invalids, "p1")

	_, err = store.Active().Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	// The all-records view is served from the same entry.
	archived, err := store.All().Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, archived.IsActive())
}

func TestStaleFillAfterArchive(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(testNow)
	lines := []domain.LineQuantity{{ProductID: "p1", Quantity: 1}}

	// stale reproduces a reader that loaded p1 before the archive committed and
	// filled the cache after the archive's invalidation.
	stale := func(t *testing.T) (*memstore.Store, *ProductStore, *Ledger) {
		t.Helper()
		s, store, ledger, c, stamper := setup(t)
		createProduct(t, store, stamper, "p1", 5)

		before, err := s.Products().All().Get(ctx, "p1")
		require.NoError(t, err)

		p, err := store.All().Get(ctx, "p1")
		require.NoError(t, err)
		require.NoError(t, p.Archive(stamper.Stamp(ctx)))
		require.NoError(t, store.Update(ctx, p))

		require.NoError(t, c.Set(ctx, before.State()))
		return s, store, ledger
	}

	t.Run("purchasability reads the authoritative store", func(t *testing.T) {
		s, store, ledger := stale(t)
		browsing := catalog.NewVisibility(store, s.Categories(), clk)

		_, err := browsing.Active().Get(ctx, "p1")
		require.NoError(t, err, "browsing serves the stale entry until it expires")

		vis := browsing.WithAuthority(s.Products())
		_, err = vis.IsPurchasable(ctx, "p1")
		assert.ErrorIs(t, err, domain.ErrProductNotPurchasable)

		_, err = reservation.NewCoordinator(vis, ledger, zap.NewNop()).ReserveAll(ctx, "o1", lines)
		assert.ErrorIs(t, err, domain.ErrProductNotPurchasable)

		level, err := ledger.Level(ctx, "p1")
		require.NoError(t, err)
		assert.Zero(t, level.ReservedQuantity)
	})

	t.Run("ledger refuses even when the catalog check passed", func(t *testing.T) {
		s, store, ledger := stale(t)
		browsing := catalog.NewVisibility(store, s.Categories(), clk)

		_, err := browsing.IsPurchasable(ctx, "p1")
		require.NoError(t, err)

		_, err = reservation.NewCoordinator(browsing, ledger, zap.NewNop()).ReserveAll(ctx, "o1", lines)
		assert.ErrorIs(t, err, domain.ErrProductNotPurchasable)

		level, err := ledger.Level(ctx, "p1")
		require.NoError(t, err)
		assert.Zero(t, level.ReservedQuantity)
	})
}

func TestProductStore_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	_, store, _, c, stamper := setup(t)
	createProduct(t, store, stamper, "p1", 5)
	c.readErr = errors.New("connection refused")

	p, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID())
}

func TestProductStore_MissingProduct(t *testing.T) {
	_, store, _, c, _ := setup(t)

	_, err := store.Active().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.False(t, c.has("missing"))
}

func TestLedger_InvalidatesOnStockChange(t *testing.T) {
	ctx := context.Background()
	_, store, ledger, c, stamper := setup(t)
	createProduct(t, store, stamper, "p1", 10)
	createProduct(t, store, stamper, "p2", 10)

	warm := func() {
		for _, id := range []string{"p1", "p2"} {
			_, err := store.Active().Get(ctx, id)
			require.NoError(t, err)
		}
	}

	warm()
	_, err := ledger.Reserve(ctx, "p1", 3)
	require.NoError(t, err)
	assert.False(t, c.has("p1"))
	assert.True(t, c.has("p2"))

	p, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.Stock().ReservedQuantity)

	warm()
	_, err = ledger.Reserve(ctx, "p2", 2)
	require.NoError(t, err)
	warm()
	_, err = ledger.CommitBatch(ctx, []domain.LineQuantity{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)
	assert.False(t, c.has("p1"))
	assert.False(t, c.has("p2"))
}

func TestLedger_RejectedChangeKeepsEntry(t *testing.T) {
	ctx := context.Background()
	_, store, ledger, c, stamper := setup(t)
	createProduct(t, store, stamper, "p1", 1)

	_, err := store.Active().Get(ctx, "p1")
	require.NoError(t, err)

	_, err = ledger.Reserve(ctx, "p1", 5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, c.has("p1"))
}

func TestStateCodec(t *testing.T) {
	by := "admin-7"
	cat := "cat-1"
	from := testNow.Add(-time.Hour)
	st := domain.ProductState{
		Audit: domain.Audit{
			ID:        "p1",
			CreatedAt: testNow,
			UpdatedAt: testNow,
			CreatedBy: &by,
			IsActive:  true,
		},
		SKU:            "SKU-1",
		Name:           "Widget",
		CategoryID:     &cat,
		Price:          domain.MustMoney("735.55"),
		CompareAtPrice: domain.MustMoney("899.99"),
		Stock: domain.StockLevel{
			StockQuantity:     12,
			ReservedQuantity:  4,
			LowStockThreshold: 3,
			TrackInventory:    true,
		},
		AvailableFrom: &from,
		Version:       7,
	}

	raw, err := encodeState(st)
	require.NoError(t, err)
	got, err := decodeState(raw)
	require.NoError(t, err)

	assert.Equal(t, st.Audit.ID, got.Audit.ID)
	assert.Equal(t, "admin-7", *got.Audit.CreatedBy)
	assert.Nil(t, got.Audit.UpdatedBy)
	assert.Equal(t, "cat-1", *got.CategoryID)
	assert.Equal(t, "735.55", got.Price.String())
	assert.Equal(t, "899.99", got.CompareAtPrice.String())
	assert.Nil(t, got.CostPrice)
	assert.Equal(t, st.Stock, got.Stock)
	assert.True(t, from.Equal(*got.AvailableFrom))
	assert.Nil(t, got.AvailableUntil)
	assert.Equal(t, int64(7), got.Version)

	_, err = decodeState([]byte(`{"price":"abc"}`))
	assert.Error(t, err)
}
