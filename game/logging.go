package game

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// LogPerf logs a per-phase timing table over the recent perf window.
func (g *Game) LogPerf() {
	stats := g.perfCollector.Stats()
	Logf("=== Perf @ Tick %d (%d pets, %dx) ===", g.tick, len(g.order), g.stepsPerUpdate)
	Logf("Avg tick: %s (max %s) over %d ticks",
		stats.AvgTick.Round(time.Microsecond),
		stats.MaxTick.Round(time.Microsecond),
		stats.Ticks,
	)

	order := make([]telemetry.Phase, telemetry.NumPhases)
	for i := range order {
		order[i] = telemetry.Phase(i)
	}
	sort.Slice(order, func(i, j int) bool {
		return stats.Phases[order[i]].Avg > stats.Phases[order[j]].Avg
	})
	for _, ph := range order {
		Logf("  %-12s %10s  %5.1f%%", ph, stats.Phases[ph].Avg.Round(time.Microsecond), stats.Phases[ph].Pct)
	}

	Logf("Pet steps by mode:")
	for m, mt := range stats.Modes {
		if mt.Steps > 0 {
			Logf("  %-12s %10s  x%d", components.Mode(m), mt.Avg, mt.Steps)
		}
	}
	if sl := stats.Slowest; sl.Duration > 0 {
		Logf("Slowest step: pet %d while %s, %s", sl.Pet, sl.Mode, sl.Duration)
	}
	Logf("")
}

// LogPets logs one line per pet with its state and lifetime totals.
func (g *Game) LogPets() {
	modes := g.census()
	Logf("=== Tick %d ===", g.tick)
	Logf("Pets: %d (walking %d, delayed %d, airborne %d, evolving %d, dragged %d)",
		modes.Total(), modes.Walking, modes.Delayed, modes.Falling+modes.Jumping, modes.Evolving, modes.Dragged)

	for _, v := range g.Pets() {
		line := fmt.Sprintf("  #%d %-12s L%-3d S%d %-8s (%6.0f, %6.0f)", v.ID, v.Name, v.Level, v.Stage, v.Mode, v.X, v.Y)
		if s, ok := g.Lifetime(v.ID); ok {
			line += fmt.Sprintf("  flips %d jumps %d delays %d evolutions %d", s.Flips, s.Jumps, s.Delays, s.Evolutions)
		}
		Logf("%s", line)
	}
	Logf("")
}
