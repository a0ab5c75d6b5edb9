package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// OrderStatus is the fulfillment lifecycle state of an order.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "DRAFT"
	OrderReserved  OrderStatus = "RESERVED"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderFulfilled || s == OrderCancelled
}

// ReservationStatus tracks one reserved line through commit or release.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Field names for order change tracking.
const (
	FieldOrderStatus       = "status"
	FieldOrderReservations = "reservations"
	FieldOrderFailure      = "failure_reason"
)

// OrderLine is a requested product quantity with the unit price captured when the
// order was created.
type OrderLine struct {
	ProductID string
	Quantity  int64
	UnitPrice *Money
}

// ReservationLine records units held in the ledger for one order line.
type ReservationLine struct {
	OrderID   string
	ProductID string
	Quantity  int64
	Status    ReservationStatus
}

// OrderState is the persisted state of an order.
type OrderState struct {
	Audit         Audit
	Number        string
	Status        OrderStatus
	Lines         []OrderLine
	Reservations  []ReservationLine
	FailureReason string
	Version       int64
}

// Order is the aggregate root for a customer order. It owns its lines and
// reservations; ledger effects are driven by the fulfillment state machine.
type Order struct {
	audit         Audit
	number        string
	status        OrderStatus
	lines         []OrderLine
	reservations  []ReservationLine
	failureReason string
	version       int64

	changes *ChangeTracker
	events  []DomainEvent
}

const orderSuffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNumber returns a number in the form ORD-YYYYMMDD-XXXXX.
func GenerateOrderNumber(at time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderSuffixAlphabet[rand.IntN(len(orderSuffixAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

// ValidateLines checks that an order has at least one line, positive quantities
// and no product listed twice.
func ValidateLines(lines []LineQuantity) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return fmt.Errorf("line %s: %w", l.ProductID, ErrInvalidQuantity)
		}
		if _, dup := seen[l.ProductID]; dup {
			return fmt.Errorf("line %s: %w", l.ProductID, ErrDuplicateOrderLine)
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

// NewOrder creates a DRAFT order.
func NewOrder(number string, lines []OrderLine, audit Audit) (*Order, error) {
	qty := make([]LineQuantity, len(lines))
	for i, l := range lines {
		qty[i] = LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	if err := ValidateLines(qty); err != nil {
		return nil, err
	}

	o := &Order{
		audit:   audit,
		number:  number,
		status:  OrderDraft,
		lines:   copyLines(lines),
		changes: NewChangeTracker(),
	}
	o.changes.MarkDirty(FieldOrderStatus)

	o.events = append(o.events, &OrderCreatedEvent{
		OrderID:     audit.ID,
		OrderNumber: number,
		Lines:       o.EventLines(),
		CreatedBy:   copyRef(audit.CreatedBy),
		CreatedAt:   audit.CreatedAt,
	})
	return o, nil
}

// ReconstructOrder rebuilds an Order from stored state.
func ReconstructOrder(s OrderState) *Order {
	return &Order{
		audit:         s.Audit,
		number:        s.Number,
		status:        s.Status,
		lines:         copyLines(s.Lines),
		reservations:  append([]ReservationLine(nil), s.Reservations...),
		failureReason: s.FailureReason,
		version:       s.Version,
		changes:       NewChangeTracker(),
	}
}

// State returns a copy of the order's state.
func (o *Order) State() OrderState {
	a := o.audit
	a.CreatedBy = copyRef(a.CreatedBy)
	a.UpdatedBy = copyRef(a.UpdatedBy)
	return OrderState{
		Audit:         a,
		Number:        o.number,
		Status:        o.status,
		Lines:         copyLines(o.lines),
		Reservations:  append([]ReservationLine(nil), o.reservations...),
		FailureReason: o.failureReason,
		Version:       o.version,
	}
}

func (o *Order) ID() string                      { return o.audit.ID }
func (o *Order) Audit() Audit                    { return o.audit }
func (o *Order) Number() string                  { return o.number }
func (o *Order) Status() OrderStatus             { return o.status }
func (o *Order) Lines() []OrderLine              { return copyLines(o.lines) }
func (o *Order) Reservations() []ReservationLine { return append([]ReservationLine(nil), o.reservations...) }
func (o *Order) FailureReason() string           { return o.failureReason }
func (o *Order) Version() int64                  { return o.version }
func (o *Order) Changes() *ChangeTracker         { return o.changes }
func (o *Order) DomainEvents() []DomainEvent     { return o.events }

// Quantities returns the order lines as ledger quantities, in line order.
func (o *Order) Quantities() []LineQuantity {
	out := make([]LineQuantity, len(o.lines))
	for i, l := range o.lines {
		out[i] = LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}

// ReservedQuantities returns the pending reservations as ledger quantities.
func (o *Order) ReservedQuantities() []LineQuantity {
	out := make([]LineQuantity, 0, len(o.reservations))
	for _, r := range o.reservations {
		if r.Status == ReservationPending {
			out = append(out, LineQuantity{ProductID: r.ProductID, Quantity: r.Quantity})
		}
	}
	return out
}

// EventLines returns the lines in event form.
func (o *Order) EventLines() []EventLine {
	out := make([]EventLine, len(o.lines))
	for i, l := range o.lines {
		out[i] = EventLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}

// Total sums quantity times captured unit price. Lines without a price count as zero.
func (o *Order) Total() *Money {
	total := NewMoneyFromCents(0)
	for _, l := range o.lines {
		if l.UnitPrice != nil {
			total = total.Add(l.UnitPrice.MultiplyBy(l.Quantity))
		}
	}
	return total
}

// MarkReserved moves a DRAFT order to RESERVED with the given pending reservations,
// which must cover every line exactly.
func (o *Order) MarkReserved(reservations []ReservationLine, st Stamp) error {
	if o.status != OrderDraft {
		return o.transitionError(OrderReserved)
	}
	if !o.matchesLines(reservations) {
		return ErrReservationMismatch
	}

	o.reservations = make([]ReservationLine, len(reservations))
	for i, r := range reservations {
		r.OrderID = o.audit.ID
		r.Status = ReservationPending
		o.reservations[i] = r
	}
	o.status = OrderReserved
	o.failureReason = ""
	st.Apply(&o.audit)
	o.changes.MarkDirty(FieldOrderStatus, FieldOrderReservations, FieldOrderFailure)
	return nil
}

// RecordSubmitFailure keeps the order in DRAFT and remembers why submit failed.
func (o *Order) RecordSubmitFailure(reason string, st Stamp) error {
	if o.status != OrderDraft {
		return o.transitionError(OrderDraft)
	}
	o.failureReason = reason
	st.Apply(&o.audit)
	o.changes.MarkDirty(FieldOrderFailure)
	return nil
}

// MarkFulfilled moves a RESERVED order to FULFILLED and marks its reservations committed.
func (o *Order) MarkFulfilled(st Stamp) error {
	if o.status != OrderReserved {
		return o.transitionError(OrderFulfilled)
	}
	o.setReservationStatus(ReservationCommitted)
	o.status = OrderFulfilled
	st.Apply(&o.audit)
	o.changes.MarkDirty(FieldOrderStatus, FieldOrderReservations)
	return nil
}

// MarkCancelled cancels a DRAFT or RESERVED order; reservations become released.
func (o *Order) MarkCancelled(st Stamp) error {
	if o.status != OrderDraft && o.status != OrderReserved {
		return o.transitionError(OrderCancelled)
	}
	o.setReservationStatus(ReservationReleased)
	o.status = OrderCancelled
	st.Apply(&o.audit)
	o.changes.MarkDirty(FieldOrderStatus, FieldOrderReservations)
	return nil
}

// MarkPersisted records a successful save: the version advances and tracked
// changes and events are cleared.
func (o *Order) MarkPersisted(version int64) {
	o.version = version
	o.changes.Reset()
	o.events = nil
}

func (o *Order) setReservationStatus(status ReservationStatus) {
	for i := range o.reservations {
		if o.reservations[i].Status == ReservationPending {
			o.reservations[i].Status = status
		}
	}
}

func (o *Order) matchesLines(reservations []ReservationLine) bool {
	if len(reservations) != len(o.lines) {
		return false
	}
	want := make(map[string]int64, len(o.lines))
	for _, l := range o.lines {
		want[l.ProductID] = l.Quantity
	}
	for _, r := range reservations {
		if q, ok := want[r.ProductID]; !ok || q != r.Quantity {
			return false
		}
		delete(want, r.ProductID)
	}
	return len(want) == 0
}

func (o *Order) transitionError(to OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.status, to)
}

func copyLines(lines []OrderLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	for i, l := range lines {
		l.UnitPrice = l.UnitPrice.Copy()
		out[i] = l
	}
	return out
}
