package game

import (
	"log/slog"

	"github.com/pthm-cable/roam/telemetry"
)

// Snapshot captures the roster: who the pets are, how far they evolved and
// where they stand.
func (g *Game) Snapshot() *telemetry.Snapshot {
	s := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Seed:    g.seed,
		Tick:    g.tick,
	}
	for _, v := range g.Pets() {
		s.Pets = append(s.Pets, telemetry.PetState{
			Name:   v.Name,
			Level:  v.Level,
			Stage:  v.Stage,
			Facing: v.Facing,
			X:      v.X,
			Y:      v.Y,
		})
	}
	return s
}

// Restore spawns the pets of a snapshot at their saved positions with their
// saved level, stage and facing. It returns the new pet IDs in snapshot order.
func (g *Game) Restore(s *telemetry.Snapshot) []uint32 {
	ids := make([]uint32, 0, len(s.Pets))
	for _, ps := range s.Pets {
		id := g.SpawnAt(ps.Name, ps.Level, ps.X, ps.Y)
		p, _ := g.ref(id)
		g.behavior.Restore(p, ps.Stage, ps.Facing)
		g.surfaces[id].SetSprite(p.Sprite.Active)
		if lt := g.lifetimes.Get(id); lt != nil {
			lt.Stage = p.Pet.Stage
		}
		ids = append(ids, id)
	}
	slog.Info("snapshot restored", "pets", len(ids), "saved_tick", s.Tick)
	return ids
}
