// Package reservation reserves stock for every line of an order or for none.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
)

// rollbackTimeout bounds compensating releases, which run even after the
// caller's context has ended.
const rollbackTimeout = 5 * time.Second

// Purchasability decides whether a product may currently be ordered.
type Purchasability interface {
	IsPurchasable(ctx context.Context, productID string) (*domain.Product, error)
}

// ReservationError reports the first line that could not be reserved. Every line
// reserved before it has been released again, unless RollbackErr is set.
type ReservationError struct {
	OrderID     string
	Line        domain.LineQuantity
	Index       int
	Err         error
	RollbackErr error
}

func (e *ReservationError) Error() string {
	msg := fmt.Sprintf("reserve order %s line %d (%s x%d): %v", e.OrderID, e.Index, e.Line.ProductID, e.Line.Quantity, e.Err)
	if e.RollbackErr != nil {
		msg += fmt.Sprintf(" (rollback failed: %v)", e.RollbackErr)
	}
	return msg
}

func (e *ReservationError) Unwrap() error { return e.Err }

// Reason is a short message suitable for storing on the rejected order.
func (e *ReservationError) Reason() string {
	switch {
	case errors.Is(e.Err, domain.ErrInsufficientStock):
		return fmt.Sprintf("insufficient stock for product %s", e.Line.ProductID)
	case errors.Is(e.Err, domain.ErrProductNotPurchasable):
		return fmt.Sprintf("product %s is not purchasable", e.Line.ProductID)
	case errors.Is(e.Err, context.DeadlineExceeded), errors.Is(e.Err, context.Canceled):
		return "reservation timed out"
	default:
		return fmt.Sprintf("reservation failed for product %s", e.Line.ProductID)
	}
}

// Coordinator reserves order lines against the stock ledger.
type Coordinator struct {
	catalog Purchasability
	ledger  contracts.StockLedger
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(catalog Purchasability, ledger contracts.StockLedger, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
		tracer:  otel.Tracer("inventory/reservation"),
	}
}

// ReserveAll reserves every line in order. On the first failure, including the
// caller's context ending, the lines already reserved are released in reverse
// order and a *ReservationError is returned.
func (c *Coordinator) ReserveAll(ctx context.Context, orderID string, lines []domain.LineQuantity) ([]domain.ReservationLine, error) {
	if err := domain.ValidateLines(lines); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "reservation.ReserveAll", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	reserved := make([]domain.ReservationLine, 0, len(lines))
	for i, line := range lines {
		if err := c.reserveLine(ctx, line); err != nil {
			rerr := &ReservationError{OrderID: orderID, Line: line, Index: i, Err: err}
			rerr.RollbackErr = c.rollback(ctx, orderID, reserved)

			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Reason())
			c.logger.Info("order reservation rejected",
				zap.String("order_id", orderID),
				zap.String("product_id", line.ProductID),
				zap.Int64("quantity", line.Quantity),
				zap.Int("released_lines", len(reserved)),
				zap.Error(err),
			)
			return nil, rerr
		}
		reserved = append(reserved, domain.ReservationLine{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Status:    domain.ReservationPending,
		})
	}

	return reserved, nil
}

func (c *Coordinator) reserveLine(ctx context.Context, line domain.LineQuantity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.catalog.IsPurchasable(ctx, line.ProductID); err != nil {
		return err
	}
	_, err := c.ledger.Reserve(ctx, line.ProductID, line.Quantity)
	return err
}

// ReleaseAll releases reservations in reverse order and reports every failure.
// It is the compensating action used by ReserveAll and by callers that could not
// persist a successful reservation.
func (c *Coordinator) ReleaseAll(ctx context.Context, orderID string, reserved []domain.ReservationLine) error {
	return c.rollback(ctx, orderID, reserved)
}

func (c *Coordinator) rollback(ctx context.Context, orderID string, reserved []domain.ReservationLine) error {
	if len(reserved) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	var errs []error
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if _, err := c.ledger.Release(ctx, r.ProductID, r.Quantity); err != nil {
			c.logger.Error("failed to release reservation during rollback",
				zap.String("order_id", orderID),
				zap.String("product_id", r.ProductID),
				zap.Int64("quantity", r.Quantity),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("release %s: %w", r.ProductID, err))
		}
	}
	return errors.Join(errs...)
}
