package create_order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// numberAttempts bounds retries on an order number collision.
const numberAttempts = 3

// Line is one requested product quantity.
type Line struct {
	ProductID string
	Quantity  int64
}

// Request contains the lines of a new order.
type Request struct {
	Lines []Line
}

// Interactor handles the create order use case.
type Interactor struct {
	orders   contracts.OrderRepository
	products contracts.ProductView
	stamper  *domain.Stamper
}

// NewInteractor creates a new create order interactor. products is the view
// unit prices are captured from.
func NewInteractor(orders contracts.OrderRepository, products contracts.ProductView, stamper *domain.Stamper) *Interactor {
	return &Interactor{orders: orders, products: products, stamper: stamper}
}

// Execute stores a DRAFT order and returns it. Stock is not touched until the
// order is submitted.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*domain.Order, error) {
	qty := make([]domain.LineQuantity, len(req.Lines))
	for n, l := range req.Lines {
		qty[n] = domain.LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if err := domain.ValidateLines(qty); err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, len(req.Lines))
	for n, l := range req.Lines {
		product, err := i.products.Get(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", l.ProductID, err)
		}
		lines[n] = domain.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: product.Price()}
	}

	audit := i.stamper.Create(ctx, uuid.New().String())
	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		order, err := domain.NewOrder(domain.GenerateOrderNumber(audit.CreatedAt), lines, audit)
		if err != nil {
			return nil, err
		}
		err = i.orders.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrDuplicateOrderNo) {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to allocate order number: %w", lastErr)
}
