package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/topology"
)

// pollEvery is how many Topology calls reuse one monitor query.
const pollEvery = 30

// MonitorTopology reports the connected monitors as a topology. raylib must be
// initialised before the first call. If no monitor can be queried the fallback
// is returned.
type MonitorTopology struct {
	fallback topology.Topology
	cached   topology.Topology
	calls    int
}

// NewMonitorTopology creates a provider with the given fallback.
func NewMonitorTopology(fallback topology.Topology) *MonitorTopology {
	return &MonitorTopology{fallback: fallback}
}

// Topology implements topology.Provider.
func (m *MonitorTopology) Topology() topology.Topology {
	if m.calls%pollEvery == 0 {
		m.cached = m.query()
	}
	m.calls++
	return m.cached
}

func (m *MonitorTopology) query() topology.Topology {
	n := rl.GetMonitorCount()
	rects := make([]topology.Rect, 0, n)
	for i := 0; i < n; i++ {
		pos := rl.GetMonitorPosition(i)
		r := topology.Rect{
			Left:   float64(pos.X),
			Top:    float64(pos.Y),
			Right:  float64(pos.X) + float64(rl.GetMonitorWidth(i)),
			Bottom: float64(pos.Y) + float64(rl.GetMonitorHeight(i)),
		}
		if !r.Empty() {
			rects = append(rects, r)
		}
	}
	if len(rects) == 0 {
		return m.fallback
	}
	return topology.New(rects...)
}
