package archive_product

import (
	"context"
	"fmt"
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

type Request struct {
	ProductID string
}

// Response reports when the product left the catalog and how many units are
// still held for orders placed before that.
type Response struct {
	ArchivedAt       time.Time
	ReservedQuantity int64
}

type Interactor struct {
	products contracts.ProductStore
	stamper  *domain.Stamper
}

func NewInteractor(products contracts.ProductStore, stamper *domain.Stamper) *Interactor {
	return &Interactor{products: products, stamper: stamper}
}

// Execute soft deletes a product. Open reservations against it stay valid and
// can still be fulfilled or cancelled; new orders are refused.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	product, err := i.products.All().Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := product.Archive(i.stamper.Stamp(ctx)); err != nil {
		return nil, err
	}
	if err := i.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to archive product %s: %w", req.ProductID, err)
	}

	return &Response{
		ArchivedAt:       product.Audit().UpdatedAt,
		ReservedQuantity: product.Stock().ReservedQuantity,
	}, nil
}
