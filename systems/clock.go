package systems

import (
	"sync"
	"time"
)

// Clock supplies wall-clock time for delays.
type Clock interface {
	Now() time.Time
}

// WallClock reads the system clock.
type WallClock struct{}

// Now implements Clock.
func (WallClock) Now() time.Time { return time.Now() }

// ManualClock only moves when advanced. The headless driver advances it one tick
// period per tick so delays stay deterministic at any simulation speed.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Rand is the random source behind behavior transitions. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}
