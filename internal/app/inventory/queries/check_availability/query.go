package check_availability

import (
	"context"
	"errors"

	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Reasons reported for unavailable lines.
const (
	ReasonNotPurchasable    = "not_purchasable"
	ReasonInsufficientStock = "insufficient_stock"
)

// Purchasability resolves a product that may be ordered now.
type Purchasability interface {
	IsPurchasable(ctx context.Context, productID string) (*domain.Product, error)
}

// Line is one requested product quantity.
type Line struct {
	ProductID string
	Quantity  int64
}

// Request contains the lines to check.
type Request struct {
	Lines []Line
}

// LineResult reports whether a line could be reserved right now.
type LineResult struct {
	ProductID   string
	Requested   int64
	Available   int64
	IsAvailable bool
	Reason      string
}

// Result is the availability of every requested line.
type Result struct {
	Lines        []LineResult
	AllAvailable bool
}

// Query handles the availability check. It never reserves stock, so the answer
// may be stale by the time an order is submitted.
type Query struct {
	catalog Purchasability
}

// NewQuery creates a new check availability query.
func NewQuery(catalog Purchasability) *Query {
	return &Query{
		catalog: catalog,
	}
}

// Execute evaluates each line against the current stock level.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	qty := make([]domain.LineQuantity, len(req.Lines))
	for i, l := range req.Lines {
		qty[i] = domain.LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if err := domain.ValidateLines(qty); err != nil {
		return nil, err
	}

	result := &Result{Lines: make([]LineResult, len(req.Lines)), AllAvailable: true}
	for i, l := range req.Lines {
		line := LineResult{ProductID: l.ProductID, Requested: l.Quantity}

		product, err := q.catalog.IsPurchasable(ctx, l.ProductID)
		switch {
		case errors.Is(err, domain.ErrProductNotPurchasable):
			line.Reason = ReasonNotPurchasable
		case err != nil:
			return nil, err
		default:
			stock := product.Stock()
			line.Available = stock.Available()
			if _, err := stock.Reserve(l.ProductID, l.Quantity); err != nil {
				line.Reason = ReasonInsufficientStock
			} else {
				line.IsAvailable = true
			}
		}

		result.AllAvailable = result.AllAvailable && line.IsAvailable
		result.Lines[i] = line
	}
	return result, nil
}
