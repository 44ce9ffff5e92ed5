// Package topology describes the connected display areas pets roam across.
package topology

import "github.com/pthm-cable/roam/config"

// Rect is a screen rectangle in virtual desktop coordinates.
// Right and Bottom are exclusive.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// ContainsX reports whether x falls inside the horizontal span.
func (r Rect) ContainsX(x float64) bool { return x >= r.Left && x < r.Right }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return r.ContainsX(x) && y >= r.Top && y < r.Bottom
}

// Topology is an ordered set of screens. It is a value; the simulation never mutates it.
type Topology struct {
	Screens []Rect
}

// New returns a topology over the given screens, dropping empty ones.
func New(screens ...Rect) Topology {
	t := Topology{Screens: make([]Rect, 0, len(screens))}
	for _, s := range screens {
		if !s.Empty() {
			t.Screens = append(t.Screens, s)
		}
	}
	return t
}

// Empty reports whether there are no screens.
func (t Topology) Empty() bool { return len(t.Screens) == 0 }

// Bounds returns the global bounding rectangle of all screens.
func (t Topology) Bounds() Rect {
	if len(t.Screens) == 0 {
		return Rect{}
	}
	b := t.Screens[0]
	for _, s := range t.Screens[1:] {
		b.Left = min(b.Left, s.Left)
		b.Top = min(b.Top, s.Top)
		b.Right = max(b.Right, s.Right)
		b.Bottom = max(b.Bottom, s.Bottom)
	}
	return b
}

// ScreenAt returns the first screen whose horizontal span contains x.
func (t Topology) ScreenAt(x float64) (Rect, bool) {
	for _, s := range t.Screens {
		if s.ContainsX(x) {
			return s, true
		}
	}
	return Rect{}, false
}

// Floor returns the resting y for a sprite of the given height at x:
// the bottom of the first screen containing x, minus the sprite height and ground offset.
func (t Topology) Floor(x, spriteHeight, groundOffset float64) (float64, bool) {
	s, ok := t.ScreenAt(x)
	if !ok {
		return 0, false
	}
	return s.Bottom - spriteHeight - groundOffset, true
}

// Equal reports whether both topologies list the same screens in the same order.
func (t Topology) Equal(o Topology) bool {
	if len(t.Screens) != len(o.Screens) {
		return false
	}
	for i := range t.Screens {
		if t.Screens[i] != o.Screens[i] {
			return false
		}
	}
	return true
}

// Provider returns the current topology. It may change between ticks (hot-plug).
type Provider interface {
	Topology() Topology
}

// Static is a Provider that never changes.
type Static Topology

// Topology implements Provider.
func (s Static) Topology() Topology { return Topology(s) }

// FromConfig builds a static provider from configured screens.
func FromConfig(screens []config.ScreenConfig) Static {
	rects := make([]Rect, 0, len(screens))
	for _, s := range screens {
		rects = append(rects, Rect{
			Left:   float64(s.Left),
			Top:    float64(s.Top),
			Right:  float64(s.Right),
			Bottom: float64(s.Bottom),
		})
	}
	return Static(New(rects...))
}
