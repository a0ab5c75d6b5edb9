package m_product

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the products table.
type Data struct {
	ProductID         string              `spanner:"product_id"`
	SKU               string              `spanner:"sku"`
	Name              string              `spanner:"name"`
	CategoryID        spanner.NullString  `spanner:"category_id"`
	Price             big.Rat             `spanner:"price"`
	CompareAtPrice    spanner.NullNumeric `spanner:"compare_at_price"`
	CostPrice         spanner.NullNumeric `spanner:"cost_price"`
	StockQuantity     int64               `spanner:"stock_quantity"`
	ReservedQuantity  int64               `spanner:"reserved_quantity"`
	LowStockThreshold int64               `spanner:"low_stock_threshold"`
	TrackInventory    bool                `spanner:"track_inventory"`
	AllowBackorders   bool                `spanner:"allow_backorders"`
	AvailableFrom     spanner.NullTime    `spanner:"available_from"`
	AvailableUntil    spanner.NullTime    `spanner:"available_until"`
	IsActive          bool                `spanner:"is_active"`
	Version           int64               `spanner:"version"`
	CreatedAt         time.Time           `spanner:"created_at"`
	UpdatedAt         time.Time           `spanner:"updated_at"`
	CreatedBy         spanner.NullString  `spanner:"created_by"`
	UpdatedBy         spanner.NullString  `spanner:"updated_by"`
}

// StockData is the ledger's projection of a product row. IsActive and CreatedAt
// are read for the reserve guard and the audit clamp; the ledger never writes them.
type StockData struct {
	StockQuantity     int64              `spanner:"stock_quantity"`
	ReservedQuantity  int64              `spanner:"reserved_quantity"`
	LowStockThreshold int64              `spanner:"low_stock_threshold"`
	TrackInventory    bool               `spanner:"track_inventory"`
	AllowBackorders   bool               `spanner:"allow_backorders"`
	Version           int64              `spanner:"version"`
	IsActive          bool               `spanner:"is_active"`
	CreatedAt         time.Time          `spanner:"created_at"`
	UpdatedAt         time.Time          `spanner:"updated_at"`
	UpdatedBy         spanner.NullString `spanner:"updated_by"`
}
