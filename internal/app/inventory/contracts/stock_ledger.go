package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// StockLedger is the authority for stock and reserved quantities.
// Every mutation on one product is linearizable; distinct products proceed
// independently. Each call returns the level after the change.
type StockLedger interface {
	// Adjust applies a signed change to stock on hand and records a movement.
	Adjust(ctx context.Context, productID string, delta int64, reason string) (domain.StockLevel, error)

	Reserve(ctx context.Context, productID string, qty int64) (domain.StockLevel, error)
	Release(ctx context.Context, productID string, qty int64) (domain.StockLevel, error)
	Commit(ctx context.Context, productID string, qty int64) (domain.StockLevel, error)

	// CommitBatch and ReleaseBatch apply to every line or to none.
	CommitBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error)
	ReleaseBatch(ctx context.Context, lines []domain.LineQuantity) (map[string]domain.StockLevel, error)

	// SetPolicy changes threshold, tracking and backorder flags under the same
	// serialization as quantity changes.
	SetPolicy(ctx context.Context, productID string, threshold int64, track, backorders bool) (domain.StockLevel, error)

	Level(ctx context.Context, productID string) (domain.StockLevel, error)
}

// MovementRepository reads the stock movement history written by Adjust.
type MovementRepository interface {
	ListByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error)
}
