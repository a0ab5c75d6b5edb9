package m_stock_movement

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a stock movement record in the database.
type Data struct {
	MovementID    string             `spanner:"movement_id"`
	ProductID     string             `spanner:"product_id"`
	Delta         int64              `spanner:"delta"`
	Reason        string             `spanner:"reason"`
	StockAfter    int64              `spanner:"stock_after"`
	ReservedAfter int64              `spanner:"reserved_after"`
	CreatedBy     spanner.NullString `spanner:"created_by"`
	CreatedAt     time.Time          `spanner:"created_at"`
}

// Model provides type-safe database operations for stock movements.
type Model struct{}

// NewModel creates a new stock movement model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a stock movement record.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading stock movements.
func (m *Model) ReadColumns() []string {
	return []string{
		MovementID,
		ProductID,
		Delta,
		Reason,
		StockAfter,
		ReservedAfter,
		CreatedBy,
		CreatedAt,
	}
}
