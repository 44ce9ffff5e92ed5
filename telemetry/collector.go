package telemetry

import "github.com/pthm-cable/roam/systems"

// Collector accumulates step outcomes within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	landings       int
	flips          int
	delays         int
	jumps          int
	evolveStarts   int
	evolutions     int
	assetFallbacks int
	floorFallbacks int
	dragStarts     int
	dragEnds       int
	petTicks       int // walking pet-ticks, the denominator for transition rates

	airTicks []float64 // airborne durations of landings in this window
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in wall-clock seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordOutcome counts the events of one pet step. walked reports whether the
// pet was eligible for a random transition this tick.
func (c *Collector) RecordOutcome(out systems.Outcome, walked bool) {
	ev := out.Events
	if walked {
		c.petTicks++
	}
	if ev.Has(systems.EventLanded) {
		c.landings++
		c.airTicks = append(c.airTicks, float64(out.AirTicks))
	}
	if ev.Has(systems.EventFlipped) {
		c.flips++
	}
	if ev.Has(systems.EventDelayed) {
		c.delays++
	}
	if ev.Has(systems.EventJumped) {
		c.jumps++
	}
	if ev.Has(systems.EventEvolveStarted) {
		c.evolveStarts++
	}
	if ev.Has(systems.EventEvolved) {
		c.evolutions++
	}
	if ev.Has(systems.EventAssetFallback) {
		c.assetFallbacks++
	}
	if ev.Has(systems.EventFloorFallback) {
		c.floorFallbacks++
	}
	if ev.Has(systems.EventDragStarted) {
		c.dragStarts++
	}
	if ev.Has(systems.EventDragEnded) {
		c.dragEnds++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// modes is the census of pets at the end of the window.
func (c *Collector) Flush(currentTick int32, modes ModeCounts) WindowStats {
	var flipRate, delayRate, jumpRate float64
	if c.petTicks > 0 {
		n := float64(c.petTicks)
		flipRate = float64(c.flips) / n
		delayRate = float64(c.delays) / n
		jumpRate = float64(c.jumps) / n
	}

	airMean, airStd, airP50, airP90 := ComputeAirtimeStats(c.airTicks)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		TimeSec:         float64(currentTick) * c.dt,

		Pets:     modes.Total(),
		Falling:  modes.Falling,
		Walking:  modes.Walking,
		Jumping:  modes.Jumping,
		Delayed:  modes.Delayed,
		Evolving: modes.Evolving,
		Dragged:  modes.Dragged,

		Landings:       c.landings,
		Flips:          c.flips,
		Delays:         c.delays,
		Jumps:          c.jumps,
		EvolveStarts:   c.evolveStarts,
		Evolutions:     c.evolutions,
		AssetFallbacks: c.assetFallbacks,
		FloorFallbacks: c.floorFallbacks,
		DragStarts:     c.dragStarts,
		DragEnds:       c.dragEnds,

		WalkTicks: c.petTicks,
		FlipRate:  flipRate,
		DelayRate: delayRate,
		JumpRate:  jumpRate,

		AirTicksMean: airMean,
		AirTicksStd:  airStd,
		AirTicksP50:  airP50,
		AirTicksP90:  airP90,
	}

	// Reset for next window
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     currentTick,
		airTicks:            c.airTicks[:0],
	}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
