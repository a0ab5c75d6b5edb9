package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Page size bounds for list operations.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ProductFilter narrows a product listing. Results are ordered by SKU and paged by
// keyset: PageToken is the last SKU of the previous page.
type ProductFilter struct {
	CategoryIDs  []string
	LowStockOnly bool
	PageSize     int
	PageToken    string
}

// NormalizedPageSize clamps PageSize to [1, MaxPageSize], defaulting when unset.
func (f ProductFilter) NormalizedPageSize() int {
	switch {
	case f.PageSize <= 0:
		return DefaultPageSize
	case f.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return f.PageSize
	}
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products      []*domain.Product
	NextPageToken string
}

// ProductView is a read surface over products. The active view excludes
// soft-deleted products; the all-records view includes them.
type ProductView interface {
	// Get returns ErrProductNotFound when the product is missing or outside the view.
	Get(ctx context.Context, productID string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
}

// ProductStore persists product aggregates together with their pending domain
// events. Stock columns are written on Create only; afterwards they belong to the
// StockLedger.
type ProductStore interface {
	// Create fails with ErrDuplicateSKU when the SKU is taken.
	Create(ctx context.Context, product *domain.Product) error

	// Update writes only the dirty fields.
	Update(ctx context.Context, product *domain.Product) error

	// Active is the default view used by purchasing paths.
	Active() ProductView

	// All includes soft-deleted products, for admin and history paths.
	All() ProductView
}
