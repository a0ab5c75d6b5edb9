package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/models/m_stock_movement"
	"github.com/light-bringer/inventory-service/internal/pkg/query"
)

// MovementRepo reads the stock_movements table.
type MovementRepo struct {
	client *spanner.Client
	model  *m_stock_movement.Model
}

var _ contracts.MovementRepository = (*MovementRepo)(nil)

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(client *spanner.Client) *MovementRepo {
	return &MovementRepo{client: client, model: m_stock_movement.NewModel()}
}

// ListByProduct returns up to limit movements, most recent first.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	b := query.From(m_stock_movement.TableName).
		Select(r.model.ReadColumns()...).
		Where(query.Eq(m_stock_movement.ProductID, productID)).
		OrderBy(m_stock_movement.CreatedAt, query.Desc)
	if limit > 0 {
		b = b.Limit(int64(limit))
	}

	var out []domain.StockMovement
	err := r.client.Single().Query(ctx, b.Build()).Do(func(row *spanner.Row) error {
		var data m_stock_movement.Data
		if err := row.ToStruct(&data); err != nil {
			return err
		}
		out = append(out, dataToMovement(&data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return out, nil
}
