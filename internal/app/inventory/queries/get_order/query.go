package get_order

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
)

// Request contains the order ID to retrieve.
type Request struct {
	OrderID string
}

// Query handles the get order query use case.
type Query struct {
	orders contracts.OrderRepository
}

// NewQuery creates a new get order query.
func NewQuery(orders contracts.OrderRepository) *Query {
	return &Query{
		orders: orders,
	}
}

// Execute retrieves an order with its lines and reservations.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.OrderDTO, error) {
	order, err := q.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	return contracts.ToOrderDTO(order), nil
}
