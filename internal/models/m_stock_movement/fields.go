package m_stock_movement

// Table name constant
const TableName = "stock_movements"

// Field name constants for type-safe database access
const (
	MovementID    = "movement_id"
	ProductID     = "product_id"
	Delta         = "delta"
	Reason        = "reason"
	StockAfter    = "stock_after"
	ReservedAfter = "reserved_after"
	CreatedBy     = "created_by"
	CreatedAt     = "created_at"
)
