package contracts

import (
	"context"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// CategoryRepository persists categories. Tree loads the full hierarchy,
// inactive categories included.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	Tree(ctx context.Context) (*domain.CategoryTree, error)
}
