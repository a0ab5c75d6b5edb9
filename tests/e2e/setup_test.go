package e2e

import (
	"context"
	"testing"

	"github.com/light-bringer/inventory-service/internal/pkg/actor"
	"github.com/light-bringer/inventory-service/internal/pkg/clock"
	"github.com/light-bringer/inventory-service/internal/services"
	"github.com/light-bringer/inventory-service/tests/testutil"
)

// Suite is the wired application plus its controllable clock.
type Suite struct {
	*services.ServiceOptions
	Clock *clock.MockClock
}

// setupTest wires the application over a fresh in-memory store.
func setupTest(t *testing.T) *Suite {
	t.Helper()
	clk := testutil.NewMockClock()
	return &Suite{ServiceOptions: testutil.NewMemoryApp(t, clk), Clock: clk}
}

// backends returns the memory suite and, when the emulator is configured, a
// Spanner suite as well.
func backends(t *testing.T) map[string]func(t *testing.T) *Suite {
	t.Helper()
	b := map[string]func(t *testing.T) *Suite{"memory": setupTest}
	if testutil.SpannerAvailable() {
		b["spanner"] = func(t *testing.T) *Suite {
			clk := testutil.NewMockClock()
			return &Suite{ServiceOptions: testutil.NewSpannerApp(t, clk), Clock: clk}
		}
	}
	return b
}

// ctx returns a context carrying a fixed operator identity.
func ctx() context.Context {
	return actor.WithActor(context.Background(), "ops-1")
}
