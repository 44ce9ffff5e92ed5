// Package progression provides the external level signal that drives evolution.
// A Source reports a level per pet name; the game only ever raises levels.
package progression

import (
	"fmt"
	"sync"
	"time"

	"github.com/pthm-cable/roam/config"
)

// Source reports the current level for a pet name.
type Source interface {
	Level(name string) int
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Static reports a fixed level per name. Unknown names report 0.
type Static map[string]int

// Level implements Source.
func (s Static) Level(name string) int { return s[name] }

// Uptime gains one level per interval of wall-clock time on top of each pet's
// starting level.
type Uptime struct {
	base     Static
	start    time.Time
	interval time.Duration
	clock    Clock
}

// NewUptime starts counting from now. A nil clock uses the system clock.
func NewUptime(base Static, interval time.Duration, clock Clock) *Uptime {
	if clock == nil {
		clock = wallClock{}
	}
	return &Uptime{base: base, start: clock.Now(), interval: interval, clock: clock}
}

// Level implements Source.
func (u *Uptime) Level(name string) int {
	if u.interval <= 0 {
		return u.base[name]
	}
	return u.base[name] + int(u.clock.Now().Sub(u.start)/u.interval)
}

// BaseLevels maps configured pet names to their starting levels.
func BaseLevels(pets []config.PetConfig) Static {
	base := make(Static, len(pets))
	for _, p := range pets {
		base[p.Name] = max(base[p.Name], p.Level)
	}
	return base
}

// FromConfig builds the source selected by progression.mode. Uptime counts on
// clock, which should be the clock driving the pets (nil means the system clock).
// The returned stop function releases background samplers and is never nil.
func FromConfig(cfg *config.Config, clock Clock) (Source, func(), error) {
	base := BaseLevels(cfg.Pets)
	interval := time.Duration(cfg.Progression.IntervalSec * float64(time.Second))

	switch cfg.Progression.Mode {
	case "", "static":
		return base, func() {}, nil
	case "uptime":
		return NewUptime(base, interval, clock), func() {}, nil
	case "work":
		w := NewWork(base, interval, SampleInterval, CPUSampler)
		w.Start()
		return w, w.Stop, nil
	}
	return nil, nil, fmt.Errorf("unknown progression mode %q", cfg.Progression.Mode)
}

// counter is a mutex-guarded accumulator shared with a sampler goroutine.
type counter struct {
	mu    sync.Mutex
	value float64
}

func (c *counter) add(v float64) {
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

func (c *counter) get() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
