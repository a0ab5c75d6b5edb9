package memstore

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// CategoryRepo implements contracts.CategoryRepository in memory.
type CategoryRepo struct {
	s *Store
}

var _ contracts.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	r.s.categories[c.ID()] = c.State()
	r.s.mu.Unlock()

	if err := r.s.appendEvents(c.DomainEvents()); err != nil {
		return err
	}
	c.MarkPersisted()
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	unlock, err := r.s.lock(ctx, categoryKey(c.ID()))
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	if _, ok := r.s.categories[c.ID()]; !ok {
		r.s.mu.Unlock()
		return domain.ErrCategoryNotFound
	}
	r.s.categories[c.ID()] = c.State()
	r.s.mu.Unlock()

	if err := r.s.appendEvents(c.DomainEvents()); err != nil {
		return err
	}
	c.MarkPersisted()
	return nil
}

func (r *CategoryRepo) Get(_ context.Context, categoryID string) (*domain.Category, error) {
	r.s.mu.RLock()
	st, ok := r.s.categories[categoryID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return domain.ReconstructCategory(st), nil
}

// Tree returns the whole hierarchy.
func (r *CategoryRepo) Tree(_ context.Context) (*domain.CategoryTree, error) {
	r.s.mu.RLock()
	nodes := make([]domain.CategoryNode, 0, len(r.s.categories))
	for _, st := range r.s.categories {
		nodes = append(nodes, domain.ReconstructCategory(st).Node())
	}
	r.s.mu.RUnlock()
	return domain.NewCategoryTree(nodes), nil
}
