package set_stock_policy

import (
	"context"

	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// Request sets the stock policy of a product.
type Request struct {
	ProductID         string
	LowStockThreshold int64
	TrackInventory    bool
	AllowBackorders   bool
}

// Interactor handles the set stock policy use case.
type Interactor struct {
	products contracts.ProductStore
	ledger   contracts.StockLedger
	notifier contracts.Notifier
	stamper  *domain.Stamper
	logger   *zap.Logger
}

// NewInteractor creates a new set stock policy interactor.
func NewInteractor(
	products contracts.ProductStore,
	ledger contracts.StockLedger,
	notifier contracts.Notifier,
	stamper *domain.Stamper,
	logger *zap.Logger,
) *Interactor {
	return &Interactor{
		products: products,
		ledger:   ledger,
		notifier: notifier,
		stamper:  stamper,
		logger:   logger,
	}
}

// Execute changes the policy. Turning backorders off or tracking on fails with
// ErrStockPolicyConflict while reservations exceed stock on hand.
func (i *Interactor) Execute(ctx context.Context, req *Request) (domain.StockLevel, error) {
	product, err := i.products.All().Get(ctx, req.ProductID)
	if err != nil {
		return domain.StockLevel{}, err
	}
	if !product.IsActive() {
		return domain.StockLevel{}, domain.ErrCannotModifyArchived
	}

	level, err := i.ledger.SetPolicy(ctx, req.ProductID, req.LowStockThreshold, req.TrackInventory, req.AllowBackorders)
	if err != nil {
		return domain.StockLevel{}, err
	}

	event := &domain.StockPolicyChangedEvent{
		ProductID:         req.ProductID,
		LowStockThreshold: level.LowStockThreshold,
		TrackInventory:    level.TrackInventory,
		AllowBackorders:   level.AllowBackorders,
		ChangedAt:         i.stamper.Now(),
	}
	if err := i.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
		i.logger.Warn("failed to publish notification", zap.String("event_type", event.EventType()), zap.Error(err))
	}

	return level, nil
}
