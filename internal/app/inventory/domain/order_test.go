package domain

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

func newTestOrder(t *testing.T) (*Order, *Stamper) {
	t.Helper()
	s := NewStamper(clock.NewMockClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	o, err := NewOrder("ORD-20260301-AAAAA", []OrderLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: MustMoney("10.50")},
		{ProductID: "p2", Quantity: 1, UnitPrice: MustMoney("4.00")},
	}, s.Create(context.Background(), "order-1"))
	require.NoError(t, err)
	return o, s
}

func reservationsFor(o *Order) []ReservationLine {
	var out []ReservationLine
	for _, q := range o.Quantities() {
		out = append(out, ReservationLine{ProductID: q.ProductID, Quantity: q.Quantity})
	}
	return out
}

func TestGenerateOrderNumber(t *testing.T) {
	at := time.Date(2024, 12, 15, 23, 0, 0, 0, time.UTC)
	n := GenerateOrderNumber(at)
	assert.Regexp(t, regexp.MustCompile(`^ORD-20241215-[A-Z0-9]{5}$`), n)
}

func TestValidateLines(t *testing.T) {
	assert.ErrorIs(t, ValidateLines(nil), ErrEmptyOrder)
	assert.ErrorIs(t, ValidateLines([]LineQuantity{{ProductID: "a", Quantity: 0}}), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateLines([]LineQuantity{{ProductID: "a", Quantity: 1}, {ProductID: "a", Quantity: 2}}), ErrDuplicateOrderLine)
	assert.NoError(t, ValidateLines([]LineQuantity{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}))
}

func TestOrder_New(t *testing.T) {
	o, _ := newTestOrder(t)

	assert.Equal(t, OrderDraft, o.Status())
	assert.Equal(t, "25.00", o.Total().String())
	require.Len(t, o.DomainEvents(), 1)
	assert.Equal(t, EventOrderCreated, o.DomainEvents()[0].EventType())
}

func TestOrder_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("draft to reserved to fulfilled", func(t *testing.T) {
		o, s := newTestOrder(t)
		require.NoError(t, o.MarkReserved(reservationsFor(o), s.Stamp(ctx)))
		assert.Equal(t, OrderReserved, o.Status())
		assert.Len(t, o.ReservedQuantities(), 2)
		for _, r := range o.Reservations() {
			assert.Equal(t, "order-1", r.OrderID)
			assert.Equal(t, ReservationPending, r.Status)
		}

		require.NoError(t, o.MarkFulfilled(s.Stamp(ctx)))
		assert.Equal(t, OrderFulfilled, o.Status())
		assert.Empty(t, o.ReservedQuantities())
		assert.Equal(t, ReservationCommitted, o.Reservations()[0].Status)

		assert.ErrorIs(t, o.MarkCancelled(s.Stamp(ctx)), ErrInvalidTransition)
		assert.ErrorIs(t, o.MarkFulfilled(s.Stamp(ctx)), ErrInvalidTransition)
	})

	t.Run("reserved to cancelled releases", func(t *testing.T) {
		o, s := newTestOrder(t)
		require.NoError(t, o.MarkReserved(reservationsFor(o), s.Stamp(ctx)))
		require.NoError(t, o.MarkCancelled(s.Stamp(ctx)))
		assert.Equal(t, ReservationReleased, o.Reservations()[1].Status)
		assert.True(t, o.Status().IsTerminal())
	})

	t.Run("draft cancels without reservations", func(t *testing.T) {
		o, s := newTestOrder(t)
		require.NoError(t, o.MarkCancelled(s.Stamp(ctx)))
		assert.Empty(t, o.Reservations())
	})

	t.Run("draft cannot be fulfilled", func(t *testing.T) {
		o, s := newTestOrder(t)
		assert.ErrorIs(t, o.MarkFulfilled(s.Stamp(ctx)), ErrInvalidTransition)
	})

	t.Run("reservations must match lines", func(t *testing.T) {
		o, s := newTestOrder(t)
		partial := reservationsFor(o)[:1]
		assert.ErrorIs(t, o.MarkReserved(partial, s.Stamp(ctx)), ErrReservationMismatch)
		assert.Equal(t, OrderDraft, o.Status())
	})

	t.Run("failed submit stays draft", func(t *testing.T) {
		o, s := newTestOrder(t)
		require.NoError(t, o.RecordSubmitFailure("insufficient stock for p2", s.Stamp(ctx)))
		assert.Equal(t, OrderDraft, o.Status())
		assert.Equal(t, "insufficient stock for p2", o.FailureReason())

		require.NoError(t, o.MarkReserved(reservationsFor(o), s.Stamp(ctx)))
		assert.Empty(t, o.FailureReason())
	})
}

func TestOrder_StateRoundTrip(t *testing.T) {
	o, s := newTestOrder(t)
	require.NoError(t, o.MarkReserved(reservationsFor(o), s.Stamp(context.Background())))
	o.MarkPersisted(3)

	r := ReconstructOrder(o.State())
	assert.Equal(t, int64(3), r.Version())
	assert.Equal(t, o.Reservations(), r.Reservations())
	assert.Equal(t, o.Total().String(), r.Total().String())
	assert.False(t, r.Changes().HasChanges())
}
