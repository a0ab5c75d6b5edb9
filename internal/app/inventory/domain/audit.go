package domain

import (
	"context"
	"time"

	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// Audit is embedded by every persisted entity. It carries identity, creation and
// update stamps with actor attribution, and the soft-delete flag.
// CreatedBy/UpdatedBy are nil for system actions.
type Audit struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy *string
	UpdatedBy *string
	IsActive  bool
}

// touch records an update. UpdatedAt never moves before CreatedAt.
func (a *Audit) touch(at time.Time, by *string) {
	if at.Before(a.CreatedAt) {
		at = a.CreatedAt
	}
	a.UpdatedAt = at
	a.UpdatedBy = copyRef(by)
}

// Stamper is the single write-path hook for audit fields. Every mutation that is
// persisted goes through Create or Touch so actor and time are always filled in.
type Stamper struct {
	clock clock.Clock
}

// NewStamper creates a Stamper using clk for timestamps.
func NewStamper(clk clock.Clock) *Stamper {
	return &Stamper{clock: clk}
}

// Now returns the stamper's current time.
func (s *Stamper) Now() time.Time { return s.clock.Now() }

// Create returns the audit block for a new active record.
func (s *Stamper) Create(ctx context.Context, id string) Audit {
	now := s.clock.Now()
	by := actor.Ref(ctx)
	return Audit{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: by,
		UpdatedBy: copyRef(by),
		IsActive:  true,
	}
}

// Touch stamps an update onto a.
func (s *Stamper) Touch(ctx context.Context, a *Audit) {
	a.touch(s.clock.Now(), actor.Ref(ctx))
}

// Stamp captures the current time and actor so one logical change can be applied
// to several records with identical stamps.
func (s *Stamper) Stamp(ctx context.Context) Stamp {
	return Stamp{At: s.clock.Now(), By: actor.Ref(ctx)}
}

// Stamp is a captured (time, actor) pair.
type Stamp struct {
	At time.Time
	By *string
}

// Apply writes the stamp into a as an update.
func (st Stamp) Apply(a *Audit) {
	a.touch(st.At, st.By)
}

func copyRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
