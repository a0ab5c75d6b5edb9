package create_category

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/memstore"
	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/deactivate_category"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stamper := domain.NewStamper(clk)
	s := memstore.New(clk)

	create := NewInteractor(s.Categories(), stamper)
	deactivate := deactivate_category.NewInteractor(s.Categories(), stamper)

	rootID, err := create.Execute(ctx, &Request{Name: "Electronics"})
	require.NoError(t, err)
	childID, err := create.Execute(ctx, &Request{Name: "Phones", ParentID: &rootID, Position: 1})
	require.NoError(t, err)

	t.Run("builds a tree", func(t *testing.T) {
		tree, err := s.Categories().Tree(ctx)
		require.NoError(t, err)
		children := tree.Children(rootID)
		require.Len(t, children, 1)
		assert.Equal(t, childID, children[0])
	})

	t.Run("rejects an unknown parent", func(t *testing.T) {
		missing := "missing"
		_, err := create.Execute(ctx, &Request{Name: "Orphan", ParentID: &missing})
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := create.Execute(ctx, &Request{Name: "  "})
		assert.ErrorIs(t, err, domain.ErrEmptyCategoryName)
	})

	t.Run("deactivating hides descendants", func(t *testing.T) {
		require.NoError(t, deactivate.Execute(ctx, &deactivate_category.Request{CategoryID: rootID}))

		tree, err := s.Categories().Tree(ctx)
		require.NoError(t, err)
		assert.False(t, tree.IsVisible(childID))

		err = deactivate.Execute(ctx, &deactivate_category.Request{CategoryID: rootID})
		assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	})
}
