package testutil

import (
	"time"

	"github.com/light-bringer/inventory-service/internal/pkg/clock"
)

// Epoch is the start time of every mock clock handed out here.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// NewMockClock creates a mock clock at Epoch that can be advanced in tests.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(Epoch)
}
