package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	TimeSec         float64 `csv:"time"`

	// Census at window end
	Pets     int `csv:"pets"`
	Falling  int `csv:"falling"`
	Walking  int `csv:"walking"`
	Jumping  int `csv:"jumping"`
	Delayed  int `csv:"delayed"`
	Evolving int `csv:"evolving"`
	Dragged  int `csv:"dragged"`

	// Events during window
	Landings       int `csv:"landings"`
	Flips          int `csv:"flips"`
	Delays         int `csv:"delays"`
	Jumps          int `csv:"jumps"`
	EvolveStarts   int `csv:"evolve_starts"`
	Evolutions     int `csv:"evolutions"`
	AssetFallbacks int `csv:"asset_fallbacks"`
	FloorFallbacks int `csv:"floor_fallbacks"`
	DragStarts     int `csv:"drag_starts"`
	DragEnds       int `csv:"drag_ends"`

	// Transition rates per walking pet-tick
	WalkTicks int     `csv:"walk_ticks"`
	FlipRate  float64 `csv:"flip_rate"`
	DelayRate float64 `csv:"delay_rate"`
	JumpRate  float64 `csv:"jump_rate"`

	// Airborne duration of landings, in ticks
	AirTicksMean float64 `csv:"air_ticks_mean"`
	AirTicksStd  float64 `csv:"air_ticks_std"`
	AirTicksP50  float64 `csv:"air_ticks_p50"`
	AirTicksP90  float64 `csv:"air_ticks_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeAirtimeStats calculates mean, sample standard deviation and percentiles.
// The deviation is 0 for fewer than two values.
func ComputeAirtimeStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, std, Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("time", s.TimeSec),
		slog.Int("pets", s.Pets),
		slog.Int("falling", s.Falling),
		slog.Int("walking", s.Walking),
		slog.Int("jumping", s.Jumping),
		slog.Int("delayed", s.Delayed),
		slog.Int("evolving", s.Evolving),
		slog.Int("dragged", s.Dragged),
		slog.Int("landings", s.Landings),
		slog.Int("flips", s.Flips),
		slog.Int("delays", s.Delays),
		slog.Int("jumps", s.Jumps),
		slog.Int("evolve_starts", s.EvolveStarts),
		slog.Int("evolutions", s.Evolutions),
		slog.Int("asset_fallbacks", s.AssetFallbacks),
		slog.Int("floor_fallbacks", s.FloorFallbacks),
		slog.Int("drag_starts", s.DragStarts),
		slog.Int("drag_ends", s.DragEnds),
		slog.Int("walk_ticks", s.WalkTicks),
		slog.Float64("flip_rate", s.FlipRate),
		slog.Float64("delay_rate", s.DelayRate),
		slog.Float64("jump_rate", s.JumpRate),
		slog.Float64("air_ticks_mean", s.AirTicksMean),
		slog.Float64("air_ticks_std", s.AirTicksStd),
		slog.Float64("air_ticks_p50", s.AirTicksP50),
		slog.Float64("air_ticks_p90", s.AirTicksP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
