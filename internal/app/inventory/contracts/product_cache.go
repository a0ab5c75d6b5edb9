package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// ProductCache holds authoritative product state keyed by id. Derived fields are
// never cached; readers recompute them from the cached state.
type ProductCache interface {
	// Get reports found=false on a miss.
	Get(ctx context.Context, productID string) (state *domain.ProductState, found bool, err error)
	Set(ctx context.Context, state domain.ProductState) error
	Invalidate(ctx context.Context, productIDs ...string) error
}
