package get_product

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Catalog exposes the two product read surfaces.
type Catalog interface {
	Active() contracts.ProductView
	All() contracts.ProductView
}

// Request identifies a product by ID or, when ProductID is empty, by SKU.
// IncludeInactive reads through the all-records view.
type Request struct {
	ProductID       string
	SKU             string
	IncludeInactive bool
}

// Query handles the get product query use case.
type Query struct {
	catalog Catalog
}

// NewQuery creates a new get product query.
func NewQuery(catalog Catalog) *Query {
	return &Query{
		catalog: catalog,
	}
}

// Execute retrieves a product with derived fields computed at read time.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.ProductDTO, error) {
	view := q.catalog.Active()
	if req.IncludeInactive {
		view = q.catalog.All()
	}

	var (
		product *domain.Product
		err     error
	)
	if req.ProductID != "" {
		product, err = view.Get(ctx, req.ProductID)
	} else {
		product, err = view.GetBySKU(ctx, req.SKU)
	}
	if err != nil {
		return nil, err
	}

	return contracts.ToProductDTO(product), nil
}
