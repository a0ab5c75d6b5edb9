package m_category

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a category row.
type Data struct {
	CategoryID string             `spanner:"category_id"`
	Name       string             `spanner:"name"`
	ParentID   spanner.NullString `spanner:"parent_id"`
	Position   int64              `spanner:"position"`
	IsActive   bool               `spanner:"is_active"`
	CreatedAt  time.Time          `spanner:"created_at"`
	UpdatedAt  time.Time          `spanner:"updated_at"`
	CreatedBy  spanner.NullString `spanner:"created_by"`
	UpdatedBy  spanner.NullString `spanner:"updated_by"`
}

// Model provides type-safe database operations for categories.
type Model struct{}

// NewModel creates a new category model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a category.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// UpdateMut creates a mutation replacing every column of a category.
func (m *Model) UpdateMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.UpdateStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading categories.
func (m *Model) ReadColumns() []string {
	return []string{
		CategoryID,
		Name,
		ParentID,
		Position,
		IsActive,
		CreatedAt,
		UpdatedAt,
		CreatedBy,
		UpdatedBy,
	}
}
