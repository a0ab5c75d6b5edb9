package memstore

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// MovementRepo reads stock movements recorded by the Ledger.
type MovementRepo struct {
	s *Store
}

// ListByProduct returns up to limit movements, most recent first.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.movements[productID]
	out := make([]domain.StockMovement, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}
