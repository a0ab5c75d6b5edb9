package m_order

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents an order header row.
type Data struct {
	OrderID       string             `spanner:"order_id"`
	OrderNumber   string             `spanner:"order_number"`
	Status        string             `spanner:"status"`
	FailureReason spanner.NullString `spanner:"failure_reason"`
	IsActive      bool               `spanner:"is_active"`
	Version       int64              `spanner:"version"`
	CreatedAt     time.Time          `spanner:"created_at"`
	UpdatedAt     time.Time          `spanner:"updated_at"`
	CreatedBy     spanner.NullString `spanner:"created_by"`
	UpdatedBy     spanner.NullString `spanner:"updated_by"`
}

// Model provides type-safe database operations for orders.
type Model struct{}

// NewModel creates a new order model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting an order header.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// UpdateMut creates a mutation replacing every column of an order header.
func (m *Model) UpdateMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.UpdateStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading orders.
func (m *Model) ReadColumns() []string {
	return []string{
		OrderID,
		OrderNumber,
		Status,
		FailureReason,
		IsActive,
		Version,
		CreatedAt,
		UpdatedAt,
		CreatedBy,
		UpdatedBy,
	}
}
