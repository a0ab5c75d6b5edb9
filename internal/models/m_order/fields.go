package m_order

// Field name constants for the orders table.
const (
	TableName = "orders"

	OrderID       = "order_id"
	OrderNumber   = "order_number"
	Status        = "status"
	FailureReason = "failure_reason"
	IsActive      = "is_active"
	Version       = "version"
	CreatedAt     = "created_at"
	UpdatedAt     = "updated_at"
	CreatedBy     = "created_by"
	UpdatedBy     = "updated_by"

	// NumberIndex is the unique secondary index on order_number.
	NumberIndex = "idx_orders_number"
)
