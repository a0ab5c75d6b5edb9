// Package fulfillment drives orders through DRAFT, RESERVED, FULFILLED and
// CANCELLED, keeping the stock ledger in step with every transition.
package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/light-bringer/inventory-service/internal/app/inventory/contracts"
	"github.com/light-bringer/inventory-service/internal/app/inventory/domain"
	"github.com/light-bringer/inventory-service/internal/app/inventory/reservation"
	"github.com/light-bringer/inventory-service/internal/pkg/keylock"
)

// Reserver reserves and releases all lines of an order.
type Reserver interface {
	ReserveAll(ctx context.Context, orderID string, lines []domain.LineQuantity) ([]domain.ReservationLine, error)
	ReleaseAll(ctx context.Context, orderID string, reserved []domain.ReservationLine) error
}

// StateMachine applies order transitions. Transitions of one order are
// serialized in-process by a key lock and across processes by the order
// version check in OrderRepository.Save and Settle. Fulfill and cancel write the
// order and its stock rows through Settle, so a crash cannot separate them.
type StateMachine struct {
	orders   contracts.OrderRepository
	reserver Reserver
	ledger   contracts.StockLedger
	notifier contracts.Notifier
	stamper  *domain.Stamper
	locks    *keylock.Locker
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewStateMachine creates a StateMachine.
func NewStateMachine(
	orders contracts.OrderRepository,
	reserver Reserver,
	ledger contracts.StockLedger,
	notifier contracts.Notifier,
	stamper *domain.Stamper,
	logger *zap.Logger,
) *StateMachine {
	return &StateMachine{
		orders:   orders,
		reserver: reserver,
		ledger:   ledger,
		notifier: notifier,
		stamper:  stamper,
		locks:    keylock.New(),
		logger:   logger,
		tracer:   otel.Tracer("inventory/fulfillment"),
	}
}

// Submit reserves stock for every line of a DRAFT order and moves it to
// RESERVED. If any line fails the order stays DRAFT with the failure reason
// recorded and nothing remains reserved. Submitting a RESERVED order is a no-op.
func (m *StateMachine) Submit(ctx context.Context, orderID string) (order *domain.Order, err error) {
	ctx, span := m.startSpan(ctx, "fulfillment.Submit", orderID)
	defer func() { endSpan(span, err) }()

	unlock, err := m.locks.Lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err = m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status() {
	case domain.OrderReserved:
		return order, nil
	case domain.OrderDraft:
	default:
		return nil, fmt.Errorf("%w: cannot submit %s order", domain.ErrInvalidTransition, order.Status())
	}

	reserved, err := m.reserver.ReserveAll(ctx, orderID, order.Quantities())
	if err != nil {
		var rerr *reservation.ReservationError
		if errors.As(err, &rerr) {
			m.recordRejection(ctx, order, rerr)
		}
		return nil, err
	}

	if err := order.MarkReserved(reserved, m.stamper.Stamp(ctx)); err != nil {
		m.compensate(ctx, orderID, reserved)
		return nil, err
	}
	if err := m.orders.Save(ctx, order); err != nil {
		m.compensate(ctx, orderID, reserved)
		return nil, fmt.Errorf("failed to save reserved order: %w", err)
	}

	m.logger.Info("order reserved", zap.String("order_id", orderID), zap.Int("lines", len(reserved)))
	m.notifyTransition(ctx, order, domain.EventOrderReserved, domain.OrderDraft)
	m.raiseStockAlerts(ctx, order.Quantities(), nil)
	return order, nil
}

// Fulfill commits the reserved stock of a RESERVED order and moves it to
// FULFILLED. Fulfilling an already FULFILLED order is a no-op.
func (m *StateMachine) Fulfill(ctx context.Context, orderID string) (order *domain.Order, err error) {
	ctx, span := m.startSpan(ctx, "fulfillment.Fulfill", orderID)
	defer func() { endSpan(span, err) }()

	unlock, err := m.locks.Lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err = m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status() {
	case domain.OrderFulfilled:
		return order, nil
	case domain.OrderReserved:
	default:
		return nil, fmt.Errorf("%w: cannot fulfill %s order", domain.ErrInvalidTransition, order.Status())
	}

	lines := order.ReservedQuantities()
	if err := order.MarkFulfilled(m.stamper.Stamp(ctx)); err != nil {
		return nil, err
	}
	levels, err := m.settle(ctx, order, domain.OpCommit, lines)
	if err != nil {
		return nil, err
	}

	m.logger.Info("order fulfilled", zap.String("order_id", orderID))
	m.notifyTransition(ctx, order, domain.EventOrderFulfilled, domain.OrderReserved)
	m.raiseStockAlerts(ctx, lines, levels)
	return order, nil
}

// Cancel cancels a DRAFT or RESERVED order, releasing any reservation.
// Cancelling an already CANCELLED order is a no-op; a FULFILLED order cannot
// be cancelled.
func (m *StateMachine) Cancel(ctx context.Context, orderID string) (order *domain.Order, err error) {
	ctx, span := m.startSpan(ctx, "fulfillment.Cancel", orderID)
	defer func() { endSpan(span, err) }()

	unlock, err := m.locks.Lock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	order, err = m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status()
	switch from {
	case domain.OrderCancelled:
		return order, nil
	case domain.OrderDraft, domain.OrderReserved:
	default:
		return nil, fmt.Errorf("%w: cannot cancel %s order", domain.ErrInvalidTransition, from)
	}

	lines := order.ReservedQuantities()
	if err := order.MarkCancelled(m.stamper.Stamp(ctx)); err != nil {
		return nil, err
	}

	if from == domain.OrderDraft || len(lines) == 0 {
		if err := m.orders.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to save cancelled order: %w", err)
		}
	} else if _, err := m.settle(ctx, order, domain.OpRelease, lines); err != nil {
		return nil, err
	}

	m.logger.Info("order cancelled", zap.String("order_id", orderID), zap.String("from", string(from)))
	m.notifyTransition(ctx, order, domain.EventOrderCancelled, from)
	return order, nil
}

// settle writes the new order status together with the ledger change. On
// failure nothing was persisted and the stored order keeps its old status.
func (m *StateMachine) settle(ctx context.Context, order *domain.Order, op string, lines []domain.LineQuantity) (map[string]domain.StockLevel, error) {
	levels, err := m.orders.Settle(ctx, order, op, lines)
	if err != nil {
		m.logLedgerFailure(order.ID(), err)
		return nil, err
	}
	return levels, nil
}

func (m *StateMachine) compensate(ctx context.Context, orderID string, reserved []domain.ReservationLine) {
	if err := m.reserver.ReleaseAll(ctx, orderID, reserved); err != nil {
		m.logger.Error("failed to release reservation of unsaved order",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

func (m *StateMachine) recordRejection(ctx context.Context, order *domain.Order, rerr *reservation.ReservationError) {
	st := m.stamper.Stamp(ctx)
	if err := order.RecordSubmitFailure(rerr.Reason(), st); err == nil {
		if err := m.orders.Save(context.WithoutCancel(ctx), order); err != nil {
			m.logger.Warn("failed to record submit failure", zap.String("order_id", order.ID()), zap.Error(err))
		}
	}
	m.publish(ctx, &domain.OrderRejectedEvent{
		OrderID:    order.ID(),
		ProductID:  rerr.Line.ProductID,
		Reason:     rerr.Reason(),
		RejectedAt: st.At,
	})
}

func (m *StateMachine) notifyTransition(ctx context.Context, order *domain.Order, eventType string, from domain.OrderStatus) {
	audit := order.Audit()
	m.publish(ctx, &domain.OrderTransitionEvent{
		Type:        eventType,
		OrderID:     order.ID(),
		OrderNumber: order.Number(),
		From:        string(from),
		To:          string(order.Status()),
		Lines:       order.EventLines(),
		Actor:       audit.UpdatedBy,
		OccurredAt:  audit.UpdatedAt,
	})
}

// raiseStockAlerts publishes low and out-of-stock alerts for the touched
// products. Levels missing from known are read from the ledger.
func (m *StateMachine) raiseStockAlerts(ctx context.Context, lines []domain.LineQuantity, known map[string]domain.StockLevel) {
	now := m.stamper.Now()
	for _, line := range lines {
		level, ok := known[line.ProductID]
		if !ok {
			var err error
			if level, err = m.ledger.Level(ctx, line.ProductID); err != nil {
				m.logger.Warn("failed to read stock level for alert", zap.String("product_id", line.ProductID), zap.Error(err))
				continue
			}
		}
		if alert := domain.NewStockAlert(line.ProductID, level, now); alert != nil {
			m.publish(ctx, alert)
		}
	}
}

// publish hands the event to the notifier. Failures are logged and never undo
// the transition.
func (m *StateMachine) publish(ctx context.Context, event domain.DomainEvent) {
	if err := m.notifier.Notify(context.WithoutCancel(ctx), event); err != nil {
		m.logger.Warn("failed to publish notification",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Error(err),
		)
	}
}

func (m *StateMachine) logLedgerFailure(orderID string, err error) {
	if errors.Is(err, domain.ErrInvariantViolation) {
		m.logger.Error("ledger invariant violated", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	m.logger.Warn("ledger update failed", zap.String("order_id", orderID), zap.Error(err))
}

func (m *StateMachine) startSpan(ctx context.Context, name, orderID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("order.id", orderID)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
