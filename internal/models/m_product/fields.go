package m_product

// Field name constants for the products table.
// These provide type-safe field references and prevent typos.
const (
	TableName = "products"

	ProductID         = "product_id"
	SKU               = "sku"
	Name              = "name"
	CategoryID        = "category_id"
	Price             = "price"
	CompareAtPrice    = "compare_at_price"
	CostPrice         = "cost_price"
	StockQuantity     = "stock_quantity"
	ReservedQuantity  = "reserved_quantity"
	LowStockThreshold = "low_stock_threshold"
	TrackInventory    = "track_inventory"
	AllowBackorders   = "allow_backorders"
	AvailableFrom     = "available_from"
	AvailableUntil    = "available_until"
	IsActive          = "is_active"
	Version           = "version"
	CreatedAt         = "created_at"
	UpdatedAt         = "updated_at"
	CreatedBy         = "created_by"
	UpdatedBy         = "updated_by"

	// SKUIndex is the unique secondary index on sku.
	SKUIndex = "idx_products_sku"
)

// AllColumns lists every column in Data field order.
var AllColumns = []string{
	ProductID, SKU, Name, CategoryID,
	Price, CompareAtPrice, CostPrice,
	StockQuantity, ReservedQuantity, LowStockThreshold, TrackInventory, AllowBackorders,
	AvailableFrom, AvailableUntil,
	IsActive, Version,
	CreatedAt, UpdatedAt, CreatedBy, UpdatedBy,
}

// StockColumns are owned by the stock ledger and never written by catalog saves.
var StockColumns = []string{
	StockQuantity, ReservedQuantity, LowStockThreshold, TrackInventory, AllowBackorders, Version,
}

// LedgerColumns is what the ledger reads, in StockData field order.
var LedgerColumns = []string{
	StockQuantity, ReservedQuantity, LowStockThreshold, TrackInventory, AllowBackorders, Version,
	IsActive, CreatedAt, UpdatedAt, UpdatedBy,
}
