package deactivate_category

import (
	"context"
	"fmt"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request contains the category ID to deactivate.
type Request struct {
	CategoryID string
}

// Interactor handles the deactivate category use case.
type Interactor struct {
	categories contracts.CategoryRepository
	stamper    *domain.Stamper
}

// NewInteractor creates a new deactivate category interactor.
func NewInteractor(categories contracts.CategoryRepository, stamper *domain.Stamper) *Interactor {
	return &Interactor{categories: categories, stamper: stamper}
}

// Execute soft deletes the category. Products in it and in its descendants drop
// out of the active catalog view.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	category, err := i.categories.Get(ctx, req.CategoryID)
	if err != nil {
		return err
	}

	if err := category.Deactivate(i.stamper.Stamp(ctx)); err != nil {
		return err
	}

	if err := i.categories.Update(ctx, category); err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}
	return nil
}
