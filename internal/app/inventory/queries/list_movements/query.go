package list_movements

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Request selects the stock history of one product.
type Request struct {
	ProductID string
	Limit     int
}

// Query handles the list stock movements query use case.
type Query struct {
	products  contracts.ProductStore
	movements contracts.MovementRepository
}

// NewQuery creates a new list movements query.
func NewQuery(products contracts.ProductStore, movements contracts.MovementRepository) *Query {
	return &Query{
		products:  products,
		movements: movements,
	}
}

// Execute returns the most recent adjustments of a product, newest first.
func (q *Query) Execute(ctx context.Context, req *Request) ([]domain.StockMovement, error) {
	if _, err := q.products.All().Get(ctx, req.ProductID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return q.movements.ListByProduct(ctx, req.ProductID, limit)
}
