package m_order_line

import (
	"cloud.google.com/go/spanner"
)

// Field name constants for the order_lines table, interleaved in orders.
const (
	TableName = "order_lines"

	OrderID   = "order_id"
	LineNo    = "line_no"
	ProductID = "product_id"
	Quantity  = "quantity"
	UnitPrice = "unit_price"
)

// Data represents one order line.
type Data struct {
	OrderID   string              `spanner:"order_id"`
	LineNo    int64               `spanner:"line_no"`
	ProductID string              `spanner:"product_id"`
	Quantity  int64               `spanner:"quantity"`
	UnitPrice spanner.NullNumeric `spanner:"unit_price"`
}

// Model provides type-safe database operations for order lines.
type Model struct{}

// NewModel creates a new order line model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting an order line.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading order lines.
func (m *Model) ReadColumns() []string {
	return []string{OrderID, LineNo, ProductID, Quantity, UnitPrice}
}
