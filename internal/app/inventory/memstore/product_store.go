package memstore

import (
	"context"
	"sort"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// ProductStore implements contracts.ProductStore in memory.
type ProductStore struct {
	s *Store
}

var _ contracts.ProductStore = (*ProductStore)(nil)

// Create stores a new product and queues its events.
func (ps *ProductStore) Create(ctx context.Context, p *domain.Product) error {
	unlock, err := ps.s.lock(ctx, productKey(p.ID()))
	if err != nil {
		return err
	}
	defer unlock()

	ps.s.mu.Lock()
	if _, taken := ps.s.skus[p.SKU()]; taken {
		ps.s.mu.Unlock()
		return domain.ErrDuplicateSKU
	}
	ps.s.skus[p.SKU()] = p.ID()
	ps.s.products[p.ID()] = p.State()
	ps.s.mu.Unlock()

	if err := ps.s.appendEvents(p.DomainEvents()); err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update writes the dirty non-stock fields of p over the stored state.
func (ps *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	if !p.Changes().HasChanges() {
		return nil
	}

	unlock, err := ps.s.lock(ctx, productKey(p.ID()))
	if err != nil {
		return err
	}
	defer unlock()

	cur, ok := ps.s.product(p.ID())
	if !ok {
		return domain.ErrProductNotFound
	}

	next := p.State()
	changes := p.Changes()
	if changes.Dirty(domain.FieldName) {
		cur.Name = next.Name
	}
	if changes.Dirty(domain.FieldCategory) {
		cur.CategoryID = next.CategoryID
	}
	if changes.Dirty(domain.FieldPrice) {
		cur.Price = next.Price
	}
	if changes.Dirty(domain.FieldCompareAtPrice) {
		cur.CompareAtPrice = next.CompareAtPrice
	}
	if changes.Dirty(domain.FieldCostPrice) {
		cur.CostPrice = next.CostPrice
	}
	if changes.Dirty(domain.FieldAvailability) {
		cur.AvailableFrom = next.AvailableFrom
		cur.AvailableUntil = next.AvailableUntil
	}
	if changes.Dirty(domain.FieldIsActive) {
		cur.Audit.IsActive = next.Audit.IsActive
	}
	cur.Audit.UpdatedAt = next.Audit.UpdatedAt
	cur.Audit.UpdatedBy = next.Audit.UpdatedBy
	ps.s.putProduct(cur)

	if err := ps.s.appendEvents(p.DomainEvents()); err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Active returns the view without soft-deleted products.
func (ps *ProductStore) Active() contracts.ProductView {
	return &productView{s: ps.s, activeOnly: true}
}

// All returns the view including soft-deleted products.
func (ps *ProductStore) All() contracts.ProductView {
	return &productView{s: ps.s}
}

type productView struct {
	s          *Store
	activeOnly bool
}

func (v *productView) visible(st domain.ProductState) bool {
	return !v.activeOnly || st.Audit.IsActive
}

func (v *productView) Get(_ context.Context, productID string) (*domain.Product, error) {
	st, ok := v.s.product(productID)
	if !ok || !v.visible(st) {
		return nil, domain.ErrProductNotFound
	}
	return domain.ReconstructProduct(st), nil
}

func (v *productView) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	v.s.mu.RLock()
	id, ok := v.s.skus[sku]
	v.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return v.Get(ctx, id)
}

func (v *productView) List(_ context.Context, filter contracts.ProductFilter) (*contracts.ProductPage, error) {
	categories := make(map[string]bool, len(filter.CategoryIDs))
	for _, id := range filter.CategoryIDs {
		categories[id] = true
	}

	v.s.mu.RLock()
	matches := make([]domain.ProductState, 0, len(v.s.products))
	for _, st := range v.s.products {
		if !v.visible(st) {
			continue
		}
		if filter.PageToken != "" && st.SKU <= filter.PageToken {
			continue
		}
		if len(categories) > 0 && (st.CategoryID == nil || !categories[*st.CategoryID]) {
			continue
		}
		if filter.LowStockOnly && !st.Stock.IsLowStock() {
			continue
		}
		matches = append(matches, st)
	}
	v.s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].SKU < matches[j].SKU })

	size := filter.NormalizedPageSize()
	page := &contracts.ProductPage{}
	if len(matches) > size {
		matches = matches[:size]
		page.NextPageToken = matches[size-1].SKU
	}
	page.Products = make([]*domain.Product, len(matches))
	for i, st := range matches {
		page.Products[i] = domain.ReconstructProduct(st)
	}
	return page, nil
}
