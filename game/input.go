package game

import (
	"log/slog"

	"github.com/pthm-cable/roam/systems"
)

// GestureKind identifies a pointer drag event.
type GestureKind uint8

const (
	GestureDragStart GestureKind = iota
	GestureDragMove
	GestureDragEnd
)

func (k GestureKind) String() string {
	switch k {
	case GestureDragStart:
		return "drag_start"
	case GestureDragMove:
		return "drag_move"
	case GestureDragEnd:
		return "drag_end"
	}
	return "unknown"
}

// Gesture is one pointer event scoped to a single pet, in desktop coordinates.
// X and Y are ignored for GestureDragEnd.
type Gesture struct {
	Kind GestureKind
	X, Y float64
}

// HandleGesture applies a drag gesture to a pet immediately, ahead of the next
// tick. Gestures that make no sense in the pet's current state are no-ops.
// It reports whether the pet exists.
func (g *Game) HandleGesture(id uint32, gs Gesture) bool {
	p, ok := g.ref(id)
	if !ok {
		return false
	}

	var out systems.Outcome
	switch gs.Kind {
	case GestureDragStart:
		out = systems.DragStart(p, gs.X, gs.Y)
	case GestureDragMove:
		systems.DragMove(p, gs.X, gs.Y)
	case GestureDragEnd:
		out = systems.DragEnd(p)
	default:
		return true
	}

	if surf := g.surfaces[id]; surf != nil {
		surf.SetPosition(p.Pos.X, p.Pos.Y)
		if out.SpriteChanged {
			surf.SetSprite(p.Sprite.Active)
		}
	}

	if out.Events != 0 {
		g.collector.RecordOutcome(out, false)
		g.lifetimes.RecordEvents(*p.Pet, out)
	}
	switch {
	case out.Events.Has(systems.EventDragStarted):
		slog.Info("drag started", "id", id, "name", p.Pet.Name, "x", gs.X, "y", gs.Y)
	case out.Events.Has(systems.EventDragEnded):
		slog.Info("drag ended", "id", id, "name", p.Pet.Name, "vx", p.Vel.X, "vy", p.Vel.Y)
	}
	return true
}

// PetAt returns the topmost pet whose bounding box contains the desktop point.
// Later spawns are drawn above earlier ones.
func (g *Game) PetAt(x, y float64) (uint32, bool) {
	for i := len(g.order) - 1; i >= 0; i-- {
		id := g.order[i]
		p, ok := g.ref(id)
		if !ok {
			continue
		}
		if x >= p.Pos.X && x < p.Pos.X+float64(p.Body.W) &&
			y >= p.Pos.Y && y < p.Pos.Y+float64(p.Body.H) {
			return id, true
		}
	}
	return 0, false
}
