package list_products

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
)

// Catalog exposes the product read surfaces and category expansion.
type Catalog interface {
	Active() contracts.ProductView
	All() contracts.ProductView
	ExpandCategory(ctx context.Context, categoryID string) ([]string, error)
}

// Request contains filtering and pagination parameters.
type Request struct {
	CategoryID      string
	LowStockOnly    bool
	IncludeInactive bool
	PageSize        int
	PageToken       string
}

// Result is one page of products.
type Result struct {
	Products      []*contracts.ProductDTO
	NextPageToken string
}

// Query handles the list products query use case.
type Query struct {
	catalog Catalog
}

// NewQuery creates a new list products query.
func NewQuery(catalog Catalog) *Query {
	return &Query{
		catalog: catalog,
	}
}

// Execute retrieves a paginated list of products. A category filter includes
// products in all of its descendant categories.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	filter := contracts.ProductFilter{
		LowStockOnly: req.LowStockOnly,
		PageSize:     req.PageSize,
		PageToken:    req.PageToken,
	}
	if req.CategoryID != "" {
		ids, err := q.catalog.ExpandCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		filter.CategoryIDs = ids
	}

	view := q.catalog.Active()
	if req.IncludeInactive {
		view = q.catalog.All()
	}

	page, err := view.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Products:      make([]*contracts.ProductDTO, len(page.Products)),
		NextPageToken: page.NextPageToken,
	}
	for i, p := range page.Products {
		result.Products[i] = contracts.ToProductDTO(p)
	}
	return result, nil
}
