package m_reservation

import (
	"cloud.google.com/go/spanner"
)

// Field name constants for the reservations table, interleaved in orders.
const (
	TableName = "reservations"

	OrderID   = "order_id"
	ProductID = "product_id"
	Quantity  = "quantity"
	Status    = "status"
)

// Data represents units held in the ledger for one order line.
type Data struct {
	OrderID   string `spanner:"order_id"`
	ProductID string `spanner:"product_id"`
	Quantity  int64  `spanner:"quantity"`
	Status    string `spanner:"status"`
}

// Model provides type-safe database operations for reservations.
type Model struct{}

// NewModel creates a new reservation model.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut creates a mutation writing a reservation row.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	mut, _ := spanner.InsertOrUpdateStruct(TableName, data)
	return mut
}

// ReadColumns returns the column names for reading reservations.
func (m *Model) ReadColumns() []string {
	return []string{OrderID, ProductID, Quantity, Status}
}
