package systems

import "github.com/pthm-cable/roam/topology"

// floor derives the active floor from the topology at the pet's current x and
// remembers it. When no screen contains x the last known floor is reused; a pet
// that never had one adopts its current height.
func (b *Behavior) floor(p PetRef, topo topology.Topology) (float64, bool) {
	m := p.Motion
	f, ok := topo.Floor(p.Pos.X, float64(p.Body.H), b.params.GroundOffset)
	if ok {
		m.Floor = f
		m.HasFloor = true
		return f, true
	}
	if !m.HasFloor {
		m.Floor = p.Pos.Y
		m.HasFloor = true
	}
	return m.Floor, false
}

// Contain clamps the pet to the global bounds of the topology and to the floor of
// the screen it stands over. Without any screen only the remembered floor applies.
func (b *Behavior) Contain(p PetRef, topo topology.Topology) Event {
	if topo.Empty() {
		floor, _ := b.floor(p, topo)
		p.Pos.Y = min(p.Pos.Y, floor)
		return EventFloorFallback
	}

	var ev Event
	bounds := topo.Bounds()
	p.Pos.X = clamp(p.Pos.X, bounds.Left, bounds.Right-float64(p.Body.W))

	floor, ok := b.floor(p, topo)
	if !ok {
		ev |= EventFloorFallback
	}
	p.Pos.Y = clamp(p.Pos.Y, bounds.Top, floor)
	return ev
}

// clamp bounds v to [lo, hi]; lo wins when the range is inverted.
func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
