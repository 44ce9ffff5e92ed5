package topology

import (
	"testing"

	"github.com/pthm-cable/roam/config"
)

func dualScreens() Topology {
	return New(
		Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080},
		Rect{Left: 1920, Top: -200, Right: 3200, Bottom: 824},
	)
}

func TestBounds(t *testing.T) {
	b := dualScreens().Bounds()
	want := Rect{Left: 0, Top: -200, Right: 3200, Bottom: 1080}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	if (Topology{}).Bounds() != (Rect{}) {
		t.Error("expected zero bounds for empty topology")
	}
}

func TestFloorFirstMatch(t *testing.T) {
	topo := dualScreens()

	tests := []struct {
		name  string
		x     float64
		floor float64
		ok    bool
	}{
		{"left screen", 100, 1080 - 128 - 20, true},
		{"right screen", 2000, 824 - 128 - 20, true},
		{"right edge of left screen", 1919.5, 1080 - 128 - 20, true},
		{"boundary belongs to right screen", 1920, 824 - 128 - 20, true},
		{"off the desktop", 4000, 0, false},
		{"left of desktop", -1, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			floor, ok := topo.Floor(tc.x, 128, 20)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && floor != tc.floor {
				t.Errorf("expected floor %v, got %v", tc.floor, floor)
			}
		})
	}
}

func TestOverlappingScreensFirstWins(t *testing.T) {
	topo := New(
		Rect{Left: 0, Top: 0, Right: 1000, Bottom: 500},
		Rect{Left: 500, Top: 0, Right: 1500, Bottom: 900},
	)
	floor, ok := topo.Floor(700, 100, 0)
	if !ok || floor != 400 {
		t.Errorf("expected first screen floor 400, got %v (ok=%v)", floor, ok)
	}
}

func TestNewDropsEmptyScreens(t *testing.T) {
	topo := New(Rect{Left: 10, Right: 10, Bottom: 100}, Rect{Right: 100, Bottom: 100})
	if len(topo.Screens) != 1 {
		t.Errorf("expected 1 screen, got %d", len(topo.Screens))
	}
}

func TestFromConfig(t *testing.T) {
	p := FromConfig([]config.ScreenConfig{{Left: 0, Top: 0, Right: 800, Bottom: 600}})
	topo := p.Topology()
	if len(topo.Screens) != 1 || topo.Screens[0].Width() != 800 || topo.Screens[0].Height() != 600 {
		t.Errorf("unexpected topology %+v", topo)
	}
	if !topo.Equal(p.Topology()) {
		t.Error("static provider should be stable")
	}
}
