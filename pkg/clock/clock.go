package clock

import (
	"sync"
	"time"
)

// Clock supplies the timestamp read at the start of every ledger operation.
// Implementations must be monotonically non-decreasing: two consecutive calls
// never go backwards, even if the underlying wall clock does.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	mu   sync.Mutex
	last time.Time
}

// NewSystem returns a Clock backed by the wall clock, clamped so that
// successive reads never decrease.
func NewSystem() Clock {
	return &systemClock{}
}

func (c *systemClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}

// Manual is a hand-driven Clock for tests. It only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative durations are rejected to
// preserve the non-decreasing contract.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: cannot advance backwards")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set jumps the clock to t. Panics if t is earlier than the current reading.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Before(m.now) {
		panic("clock: cannot set time backwards")
	}
	m.now = t.UTC()
}
