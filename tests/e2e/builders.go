package e2e

import (
	"time"

	"github.com/light-bringer/inventory-service/internal/app/inventory/usecases/create_product"
)

// ProductBuilder helps create products for tests with a fluent interface
type ProductBuilder struct {
	req create_product.Request
}

// NewProductBuilder creates a new builder with default values
func NewProductBuilder(sku string) *ProductBuilder {
	return &ProductBuilder{req: create_product.Request{
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         "100.00",
		StockQuantity: 50,
	}}
}

// WithPrice sets the selling price
func (b *ProductBuilder) WithPrice(price string) *ProductBuilder {
	b.req.Price = price
	return b
}

// WithCompareAt sets the reference price the discount is derived from
func (b *ProductBuilder) WithCompareAt(price string) *ProductBuilder {
	b.req.CompareAtPrice = &price
	return b
}

// WithCost sets the unit cost
func (b *ProductBuilder) WithCost(price string) *ProductBuilder {
	b.req.CostPrice = &price
	return b
}

// WithStock sets the initial stock on hand
func (b *ProductBuilder) WithStock(qty int64) *ProductBuilder {
	b.req.StockQuantity = qty
	return b
}

// WithThreshold sets the low stock threshold
func (b *ProductBuilder) WithThreshold(threshold int64) *ProductBuilder {
	b.req.LowStockThreshold = &threshold
	return b
}

// Untracked disables inventory tracking
func (b *ProductBuilder) Untracked() *ProductBuilder {
	track := false
	b.req.TrackInventory = &track
	return b
}

// WithBackorders allows reservations beyond stock on hand
func (b *ProductBuilder) WithBackorders() *ProductBuilder {
	b.req.AllowBackorders = true
	return b
}

// InCategory places the product in a category
func (b *ProductBuilder) InCategory(categoryID string) *ProductBuilder {
	b.req.CategoryID = &categoryID
	return b
}

// AvailableBetween sets the sales window; a zero bound is left open
func (b *ProductBuilder) AvailableBetween(from, until time.Time) *ProductBuilder {
	if !from.IsZero() {
		b.req.AvailableFrom = &from
	}
	if !until.IsZero() {
		b.req.AvailableUntil = &until
	}
	return b
}

// Build returns the create_product.Request
func (b *ProductBuilder) Build() *create_product.Request {
	req := b.req
	return &req
}
