package clock

import (
	"sync"
	"time"
)

// Clock is the time source for everything that stamps audit fields, events or
// sales-window checks.
type Clock interface {
	Now() time.Time
}

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// NewRealClock returns the wall clock in UTC.
func NewRealClock() Clock {
	return Func(func() time.Time { return time.Now().UTC() })
}

// MockClock only moves when told to. Safe for concurrent use.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set jumps to t, backwards if need be.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d and returns the new time.
func (m *MockClock) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
