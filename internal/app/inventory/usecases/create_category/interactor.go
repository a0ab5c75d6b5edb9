package create_category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request contains the data needed to create a category.
type Request struct {
	Name     string
	ParentID *string
	Position int64
}

// Interactor handles the create category use case.
type Interactor struct {
	categories contracts.CategoryRepository
	stamper    *domain.Stamper
}

// NewInteractor creates a new create category interactor.
func NewInteractor(categories contracts.CategoryRepository, stamper *domain.Stamper) *Interactor {
	return &Interactor{categories: categories, stamper: stamper}
}

// Execute creates the category and returns its id.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	id := uuid.New().String()

	tree, err := i.categories.Tree(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load categories: %w", err)
	}
	if err := tree.ValidateParent(id, req.ParentID); err != nil {
		return "", err
	}

	category, err := domain.NewCategory(req.Name, req.ParentID, req.Position, i.stamper.Create(ctx, id))
	if err != nil {
		return "", err
	}

	if err := i.categories.Create(ctx, category); err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}
