package m_product

import (
	"fmt"

	"cloud.google.com/go/spanner"
)

// Model builds mutations for the products table. Catalog writes and ledger
// writes touch disjoint column sets apart from the shared audit stamp; only
// the ledger moves Version.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut writes a new product row from its spanner tags. Insert, not upsert,
// so a reused id fails instead of overwriting stock.
func (m *Model) InsertMut(data *Data) (*spanner.Mutation, error) {
	mut, err := spanner.InsertStruct(TableName, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product %s: %w", data.ProductID, err)
	}
	return mut, nil
}

// UpdateMut writes the given catalog columns. Returns nil for an empty change set.
func (m *Model) UpdateMut(productID string, columns map[string]interface{}) *spanner.Mutation {
	if len(columns) == 0 {
		return nil
	}
	row := make(map[string]interface{}, len(columns)+1)
	for col, v := range columns {
		row[col] = v
	}
	row[ProductID] = productID
	return spanner.UpdateMap(TableName, row)
}

// StockMut writes the ledger-owned columns, version included, and stamps
// updated_at and updated_by.
func (m *Model) StockMut(productID string, data *StockData) *spanner.Mutation {
	return spanner.UpdateMap(TableName, map[string]interface{}{
		ProductID:         productID,
		StockQuantity:     data.StockQuantity,
		ReservedQuantity:  data.ReservedQuantity,
		LowStockThreshold: data.LowStockThreshold,
		TrackInventory:    data.TrackInventory,
		AllowBackorders:   data.AllowBackorders,
		Version:           data.Version,
		UpdatedAt:         data.UpdatedAt,
		UpdatedBy:         data.UpdatedBy,
	})
}
