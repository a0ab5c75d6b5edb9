package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// ProductStore serves product lookups by id from the cache and invalidates the
// entry after every committed write. Cache failures are logged and fall through
// to the wrapped store.
type ProductStore struct {
	inner  contracts.ProductStore
	cache  contracts.ProductCache
	logger *zap.Logger
}

var _ contracts.ProductStore = (*ProductStore)(nil)

// NewProductStore wraps inner with a read-through cache.
func NewProductStore(inner contracts.ProductStore, cache contracts.ProductCache, logger *zap.Logger) *ProductStore {
	return &ProductStore{inner: inner, cache: cache, logger: logger}
}

func (s *ProductStore) Create(ctx context.Context, p *domain.Product) error {
	return s.inner.Create(ctx, p)
}

func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	if err := s.inner.Update(ctx, p); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, p.ID())
	return nil
}

func (s *ProductStore) Active() contracts.ProductView {
	return &cachedView{store: s, inner: s.inner.Active(), activeOnly: true}
}

func (s *ProductStore) All() contracts.ProductView {
	return &cachedView{store: s, inner: s.inner.All()}
}

type cachedView struct {
	store      *ProductStore
	inner      contracts.ProductView
	activeOnly bool
}

// Get fills the cache from the all-records view so one entry serves both views.
func (v *cachedView) Get(ctx context.Context, productID string) (*domain.Product, error) {
	st, found, err := v.store.cache.Get(ctx, productID)
	if err != nil {
		v.store.logger.Warn("product cache read failed",
			zap.String("product_id", productID), zap.Error(err))
		return v.inner.Get(ctx, productID)
	}

	var p *domain.Product
	if found {
		p = domain.ReconstructProduct(*st)
	} else {
		p, err = v.store.inner.All().Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := v.store.cache.Set(ctx, p.State()); err != nil {
			v.store.logger.Warn("product cache fill failed",
				zap.String("product_id", productID), zap.Error(err))
		}
	}

	if v.activeOnly && !p.IsActive() {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (v *cachedView) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return v.inner.GetBySKU(ctx, sku)
}

func (v *cachedView) List(ctx context.Context, filter contracts.ProductFilter) (*contracts.ProductPage, error) {
	return v.inner.List(ctx, filter)
}

// Ledger invalidates cached products after each successful stock mutation.
type Ledger struct {
	inner  contracts.StockLedger
	cache  contracts.ProductCache
	logger *zap.Logger
}

var _ contracts.StockLedger = (*Ledger)(nil)

func NewLedger(inner contracts.StockLedger, cache contracts.ProductCache, logger *zap.Logger) *Ledger {
	return &Ledger{inner: inner, cache: cache, logger: logger}
}

func (l *Ledger) Adjust(ctx context.Context, productID string, delta int64, reason string) (domain.StockLevel, error) {
	lvl, err := l.inner.Adjust(ctx, productID, delta, reason)
	return l.after(ctx, lvl, err, productID)
}

func (l *Ledger) Reserve(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	lvl, err := l.inner.Reserve(ctx, productID, qty)
	return l.after(ctx, lvl, err, productID)
}

func (l *Ledger) Release(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	lvl, err := l.inner.Release(ctx, productID, qty)
	return l.after(ctx, lvl, err, productID)
}

func (l *Ledger) Commit(ctx context.Context, productID string, qty int64) (domain.StockLevel, error) {
	lvl, err := l.inner.Commit(ctx, productID, qty)
	return l.after(ctx, lvl, err, productID)
}

func (l *Ledger) CommitBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	levels, err := l.inner.CommitBatch(ctx, lines)
	if err == nil {
		invalidate(ctx, l.cache, l.logger, lineIDs(lines)...)
	}
	return levels, err
}

func (l *Ledger) ReleaseBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	levels, err := l.inner.ReleaseBatch(ctx, lines)
	if err == nil {
		invalidate(ctx, l.cache, l.logger, lineIDs(lines)...)
	}
	return levels, err
}

func (l *Ledger) SetPolicy(ctx context.Context, productID string, threshold int64, track, backorders bool) (domain.StockLevel, error) {
	lvl, err := l.inner.SetPolicy(ctx, productID, threshold, track, backorders)
	return l.after(ctx, lvl, err, productID)
}

func (l *Ledger) Level(ctx context.Context, productID string) (domain.StockLevel, error) {
	return l.inner.Level(ctx, productID)
}

func (l *Ledger) after(ctx context.Context, lvl domain.StockLevel, err error, productID string) (domain.StockLevel, error) {
	if err == nil {
		invalidate(ctx, l.cache, l.logger, productID)
	}
	return lvl, err
}

// OrderRepo invalidates the products whose stock moved with a settled order.
type OrderRepo struct {
	contracts.OrderRepository
	cache  contracts.ProductCache
	logger *zap.Logger
}

func NewOrderRepo(inner contracts.OrderRepository, cache contracts.ProductCache, logger *zap.Logger) *OrderRepo {
	return &OrderRepo{OrderRepository: inner, cache: cache, logger: logger}
}

func (r *OrderRepo) Settle(ctx context.Context, order *domain.Order, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	levels, err := r.OrderRepository.Settle(ctx, order, op, lines)
	if err == nil {
		invalidate(ctx, r.cache, r.logger, lineIDs(lines)...)
	}
	return levels, err
}

func lineIDs(lines []domain.LineQuantity) []string {
	ids := make([]string, len(lines))
	for i, ln := range lines {
		ids[i] = ln.ProductID
	}
	return ids
}

// invalidate ignores caller cancellation; the write has already committed.
func invalidate(ctx context.Context, c contracts.ProductCache, logger *zap.Logger, ids ...string) {
	if err := c.Invalidate(context.WithoutCancel(ctx), ids...); err != nil {
		logger.Warn("product cache invalidation failed",
			zap.Strings("product_ids", ids), zap.Error(err))
	}
}
