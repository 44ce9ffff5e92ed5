package systems

import (
	"math"
	"time"

	"github.com/pthm-cable/roam/components"
)

// DragStart takes the pet out of the physics loop. The offset between the pointer
// and the pet origin is kept for the rest of the drag. An evolution pulse in
// progress is abandoned; it restarts once the pet is back on a floor.
func DragStart(p PetRef, px, py float64) Outcome {
	var out Outcome
	m := p.Motion

	if m.Mode == components.ModeEvolving {
		m.EvolveTicks = 0
		p.Sprite.Active = Orient(p.Sprite, m.Facing)
		out.SpriteChanged = true
	}

	*p.Drag = components.Drag{
		Active:  true,
		AnchorX: px - p.Pos.X,
		AnchorY: py - p.Pos.Y,
	}
	*p.Vel = components.Velocity{}
	m.Mode = components.ModeDragged
	m.DelayUntil = time.Time{}
	m.AirTicks = 0

	out.Events |= EventDragStarted
	return out
}

// DragMove places the pet under the pointer, unclamped, and sets its velocity to the
// floored delta from the previous pointer sample. Without an active drag it is a no-op.
func DragMove(p PetRef, px, py float64) {
	d := p.Drag
	if !d.Active {
		return
	}

	p.Pos.X = px - d.AnchorX
	p.Pos.Y = py - d.AnchorY

	if d.HasLast {
		p.Vel.X = int(math.Floor(px - d.LastX))
		p.Vel.Y = int(math.Floor(py - d.LastY))
	} else {
		*p.Vel = components.Velocity{}
	}
	d.LastX, d.LastY = px, py
	d.HasLast = true
}

// DragEnd releases the pet into free fall with the last computed velocity.
// Without an active drag it is a no-op.
func DragEnd(p PetRef) Outcome {
	var out Outcome
	if !p.Drag.Active {
		return out
	}
	*p.Drag = components.Drag{}
	p.Motion.Mode = components.ModeFalling
	out.Events |= EventDragEnded
	return out
}
