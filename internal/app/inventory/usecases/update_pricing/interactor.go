package update_pricing

import (
	"context"
	"fmt"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request replaces a product's prices. A nil CompareAtPrice or CostPrice clears it.
type Request struct {
	ProductID      string
	Price          string
	CompareAtPrice *string
	CostPrice      *string
}

// Interactor handles the update pricing use case.
type Interactor struct {
	products contracts.ProductStore
	stamper  *domain.Stamper
}

// NewInteractor creates a new update pricing interactor.
func NewInteractor(products contracts.ProductStore, stamper *domain.Stamper) *Interactor {
	return &Interactor{products: products, stamper: stamper}
}

// Execute updates the pricing of a product.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	price, err := domain.NewMoney(req.Price)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPrice, err)
	}
	compareAt, err := domain.ParseOptionalMoney(req.CompareAtPrice)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCompareAtPrice, err)
	}
	cost, err := domain.ParseOptionalMoney(req.CostPrice)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCostPrice, err)
	}

	// Loaded through the all-records view so an archived product reports
	// ErrCannotModifyArchived rather than not found.
	product, err := i.products.All().Get(ctx, req.ProductID)
	if err != nil {
		return err
	}

	if err := product.UpdatePricing(price, compareAt, cost, i.stamper.Stamp(ctx)); err != nil {
		return err
	}

	if err := i.products.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}
