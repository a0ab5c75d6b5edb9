package restore_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request contains the product ID to restore.
type Request struct {
	ProductID string
}

// Interactor handles the restore product use case.
type Interactor struct {
	products contracts.ProductStore
	stamper  *domain.Stamper
}

// NewInteractor creates a new restore product interactor.
func NewInteractor(products contracts.ProductStore, stamper *domain.Stamper) *Interactor {
	return &Interactor{products: products, stamper: stamper}
}

// Execute reactivates a soft-deleted product.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	product, err := i.products.All().Get(ctx, req.ProductID)
	if err != nil {
		return err
	}

	if err := product.Restore(i.stamper.Stamp(ctx)); err != nil {
		return err
	}

	if err := i.products.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to restore product: %w", err)
	}
	return nil
}
