package adjust_stock

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// DefaultReason is recorded when the caller gives none.
const DefaultReason = "manual adjustment"

// Request contains a signed stock change.
type Request struct {
	ProductID string
	Delta     int64
	Reason    string
}

// Interactor handles the adjust stock use case.
type Interactor struct {
	products contracts.ProductStore
	ledger   contracts.StockLedger
	notifier contracts.Notifier
	stamper  *domain.Stamper
	logger   *zap.Logger
}

// NewInteractor creates a new adjust stock interactor.
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

// Execute applies the adjustment and returns the new stock level.
func (i *Interactor) Execute(ctx context.Context, req *Request) (domain.StockLevel, error) {
	if _, err := i.products.All().Get(ctx, req.ProductID); err != nil {
		return domain.StockLevel{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = DefaultReason
	}

	level, err := i.ledger.Adjust(ctx, req.ProductID, req.Delta, reason)
	if err != nil {
		return domain.StockLevel{}, err
	}

	stamp := i.stamper.Stamp(ctx)
	i.publish(ctx, &domain.StockAdjustedEvent{
		ProductID:        req.ProductID,
		Delta:            req.Delta,
		Reason:           reason,
		StockQuantity:    level.StockQuantity,
		ReservedQuantity: level.ReservedQuantity,
		AdjustedBy:       stamp.By,
		AdjustedAt:       stamp.At,
	})
	if alert := domain.NewStockAlert(req.ProductID, level, stamp.At); alert != nil {
		i.publish(ctx, alert)
	}

	return level, nil
}

func (i *Interactor) publish(ctx context.Context, event domain.DomainEvent) {
	if err := i.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
		i.logger.Warn("failed to publish notification",
			zap.String("event_type", event.EventType()),
			zap.String("product_id", event.AggregateID()),
			zap.Error(err),
		)
	}
}
