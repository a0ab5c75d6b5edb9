package create_product

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request contains the data needed to create a product. Money values are decimal
// strings. Nil policy fields take the catalog defaults.
type Request struct {
	SKU               string
	Name              string
	CategoryID        *string
	Price             string
	CompareAtPrice    *string
	CostPrice         *string
	StockQuantity     int64
	LowStockThreshold *int64
	TrackInventory    *bool
	AllowBackorders   bool
	AvailableFrom     *time.Time
	AvailableUntil    *time.Time
}

// Interactor handles the create product use case.
type Interactor struct {
	products   contracts.ProductStore
	categories contracts.CategoryRepository
	stamper    *domain.Stamper
}

// NewInteractor creates a new create product interactor.
func NewInteractor(
	products contracts.ProductStore,
	categories contracts.CategoryRepository,
	stamper *domain.Stamper,
) *Interactor {
	return &Interactor{
		products:   products,
		categories: categories,
		stamper:    stamper,
	}
}

// Execute creates a new product and returns its id.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	params, err := i.toParams(req)
	if err != nil {
		return "", err
	}

	if params.CategoryID != nil {
		if _, err := i.categories.Get(ctx, *params.CategoryID); err != nil {
			return "", err
		}
	}

	product, err := domain.NewProduct(params, i.stamper.Create(ctx, uuid.New().String()))
	if err != nil {
		return "", err
	}

	if err := i.products.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	return product.ID(), nil
}

func (i *Interactor) toParams(req *Request) (domain.NewProductParams, error) {
	price, err := domain.NewMoney(req.Price)
	if err != nil {
		return domain.NewProductParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidPrice, err)
	}
	compareAt, err := domain.ParseOptionalMoney(req.CompareAtPrice)
	if err != nil {
		return domain.NewProductParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidCompareAtPrice, err)
	}
	cost, err := domain.ParseOptionalMoney(req.CostPrice)
	if err != nil {
		return domain.NewProductParams{}, fmt.Errorf("%w: %v", domain.ErrInvalidCostPrice, err)
	}

	threshold := domain.DefaultLowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}
	track := true
	if req.TrackInventory != nil {
		track = *req.TrackInventory
	}

	return domain.NewProductParams{
		SKU:               req.SKU,
		Name:              req.Name,
		CategoryID:        req.CategoryID,
		Price:             price,
		CompareAtPrice:    compareAt,
		CostPrice:         cost,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		TrackInventory:    track,
		AllowBackorders:   req.AllowBackorders,
		AvailableFrom:     req.AvailableFrom,
		AvailableUntil:    req.AvailableUntil,
	}, nil
}
