package game

import (
	"log/slog"

	"github.com/pthm-cable/roam/systems"
	"github.com/pthm-cable/roam/telemetry"
)

// recordOutcomes feeds this tick's outcomes into telemetry and logs notable events.
func (g *Game) recordOutcomes() {
	for i := range g.slots {
		s := &g.slots[i]
		p := s.ref

		// The walk roll ran iff the walk cycle advanced
		walked := p.Motion.WalkCycle != s.cycle
		g.perfCollector.RecordStep(s.id, s.before, s.took)
		g.collector.RecordOutcome(s.out, walked)
		g.lifetimes.Record(*p.Pet, p.Motion.Mode, s.out)

		ev := s.out.Events
		if ev&(systems.EventFlipped|systems.EventDelayed|systems.EventJumped|systems.EventLanded) != 0 {
			slog.Debug("transition",
				"tick", g.tick,
				"id", s.id,
				"from", s.before,
				"to", p.Motion.Mode,
				"air_ticks", s.out.AirTicks,
			)
		}

		if ev.Has(systems.EventFloorFallback) {
			if !g.floorWarned[s.id] {
				slog.Warn("no screen under pet, keeping last floor",
					"id", s.id, "name", p.Pet.Name, "x", p.Pos.X, "floor", p.Motion.Floor)
				g.floorWarned[s.id] = true
			}
		} else if g.floorWarned[s.id] {
			delete(g.floorWarned, s.id)
		}

		if ev.Has(systems.EventEvolveStarted) {
			slog.Info("evolution started", "id", s.id, "name", p.Pet.Name, "stage", p.Pet.Stage, "level", p.Pet.Level)
		}
		if ev.Has(systems.EventEvolved) {
			g.onEvolved(s.id, p, ev.Has(systems.EventAssetFallback))
		}
	}
}

func (g *Game) onEvolved(id uint32, p systems.PetRef, fallback bool) {
	slog.Info("evolution completed",
		"id", id,
		"name", p.Pet.Name,
		"stage", p.Pet.Stage,
		"level", p.Pet.Level,
		"asset_fallback", fallback,
	)
	if g.cue != nil {
		g.cue.Play()
	}
	if g.outputManager != nil {
		rec := telemetry.NewEvolutionRecord(g.tick, *p.Pet, *p.Pos, fallback)
		if err := g.outputManager.WriteEvolution(rec); err != nil {
			slog.Error("failed to write evolution", "error", err)
		}
	}
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.census())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	for _, b := range g.bookmarks.Check(stats) {
		b.LogBookmark()
		g.saveBookmark(b)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveBookmark writes a snapshot tagged with the bookmark when snapshots are enabled.
func (g *Game) saveBookmark(b telemetry.Bookmark) {
	if g.snapshotDir == "" {
		return
	}
	snap := g.Snapshot()
	snap.Bookmark = &b
	if _, err := telemetry.SaveSnapshot(snap, g.snapshotDir); err != nil {
		slog.Error("failed to save bookmark snapshot", "type", b.Type, "error", err)
	}
}

// census counts pets by mode.
func (g *Game) census() telemetry.ModeCounts {
	var modes telemetry.ModeCounts
	query := g.petFilter.Query()
	for query.Next() {
		_, _, _, motion, _, _, _ := query.Get()
		modes.Add(motion.Mode)
	}
	return modes
}

// ModeCounts returns the current census of pets by mode.
func (g *Game) ModeCounts() telemetry.ModeCounts { return g.census() }

// PerfStats returns timing over the recent perf window.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// RecordFrame records frame timing in windowed modes.
func (g *Game) RecordFrame() { g.perfCollector.RecordFrame() }

// Lifetime returns the running totals of one pet.
func (g *Game) Lifetime(id uint32) (telemetry.LifetimeStats, bool) {
	s := g.lifetimes.Get(id)
	if s == nil {
		return telemetry.LifetimeStats{}, false
	}
	return *s, true
}
