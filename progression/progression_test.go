package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/roam/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestStatic(t *testing.T) {
	s := Static{"bulbasaur": 12}
	if s.Level("bulbasaur") != 12 || s.Level("mew") != 0 {
		t.Errorf("unexpected levels %d %d", s.Level("bulbasaur"), s.Level("mew"))
	}
}

func TestBaseLevels(t *testing.T) {
	base := BaseLevels([]config.PetConfig{
		{Name: "charmander", Level: 5},
		{Name: "charmander", Level: 9},
		{Name: "squirtle", Level: 3},
	})
	if base["charmander"] != 9 || base["squirtle"] != 3 {
		t.Errorf("unexpected base levels %v", base)
	}
}

func TestUptime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	u := NewUptime(Static{"squirtle": 5}, time.Minute, clock)

	tests := []struct {
		after time.Duration
		want  int
	}{
		{0, 5},
		{59 * time.Second, 5},
		{time.Second, 6},
		{10 * time.Minute, 16},
	}
	for _, tc := range tests {
		clock.advance(tc.after)
		if got := u.Level("squirtle"); got != tc.want {
			t.Errorf("after +%v: level %d, want %d", tc.after, got, tc.want)
		}
	}
	if u.Level("unknown") != 11 {
		t.Errorf("unknown pets start from 0, got %d", u.Level("unknown"))
	}
}

func TestWorkObserve(t *testing.T) {
	w := NewWork(Static{"charmander": 5}, 10*time.Second, time.Second, nil)

	w.Observe(100, 10*time.Second)
	if w.Level("charmander") != 6 {
		t.Errorf("level = %d, want 6", w.Level("charmander"))
	}

	// Half load levels at half speed; out-of-range samples are clamped
	w.Observe(50, 20*time.Second)
	w.Observe(250, 5*time.Second)
	w.Observe(-10, time.Hour)
	if w.Level("charmander") != 8 {
		t.Errorf("level = %d, want 8", w.Level("charmander"))
	}
}

func TestWorkSampler(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	sample := func(ctx context.Context) (float64, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 3 {
			return 0, errors.New("transient")
		}
		return 100, nil
	}

	w := NewWork(Static{}, 5*time.Millisecond, time.Millisecond, sample)
	w.Start()
	w.Start() // no second goroutine

	deadline := time.Now().Add(2 * time.Second)
	for w.Level("any") < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if w.Level("any") < 2 {
		t.Errorf("expected the sampler to accumulate work, level %d", w.Level("any"))
	}

	// No sampling after Stop
	level := w.Level("any")
	time.Sleep(10 * time.Millisecond)
	if w.Level("any") != level {
		t.Error("level changed after Stop")
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
	}{
		{"static", false},
		{"uptime", false},
		{"bogus", true},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			cfg := config.Default()
			cfg.Progression.Mode = tc.mode
			src, stop, err := FromConfig(cfg, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			defer stop()
			if src.Level("bulbasaur") != 5 {
				t.Errorf("expected configured starting level 5, got %d", src.Level("bulbasaur"))
			}
		})
	}
}

func TestFromConfigUptimeFollowsClock(t *testing.T) {
	cfg := config.Default()
	cfg.Progression.Mode = "uptime"
	cfg.Progression.IntervalSec = 60
	clock := &fakeClock{now: time.Unix(0, 0)}

	src, stop, err := FromConfig(cfg, clock)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	defer stop()

	if got := src.Level("bulbasaur"); got != 5 {
		t.Fatalf("expected base level 5, got %d", got)
	}
	clock.advance(3 * time.Minute)
	if got := src.Level("bulbasaur"); got != 8 {
		t.Errorf("expected 3 levels after 3 simulated minutes, got %d", got)
	}
}
