package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// OrderRepository persists orders with their lines and reservations.
type OrderRepository interface {
	// Create stores a new order. ErrDuplicateOrderNo when the number is taken.
	Create(ctx context.Context, order *domain.Order) error

	// Save writes the order if its stored version still equals order.Version(),
	// then advances the version. A stale version yields ErrConcurrentModification.
	Save(ctx context.Context, order *domain.Order) error

	// Settle saves order under the same version rule as Save and applies op
	// (commit or release) to lines in the same atomic write. Either the order
	// and every stock row change, or nothing does. The stock rows carry the
	// order's update stamp.
	Settle(ctx context.Context, order *domain.Order, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error)

	Get(ctx context.Context, orderID string) (*domain.Order, error)
}
