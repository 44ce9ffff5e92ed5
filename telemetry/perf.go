package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/roam/components"
)

// Phase is one stage of a game tick.
type Phase uint8

const (
	PhaseProgression Phase = iota // topology read and level sync
	PhaseBehavior                 // pet steps
	PhaseSurfaces                 // position and sprite push
	PhaseTelemetry                // outcome recording and window flush

	NumPhases = int(PhaseTelemetry) + 1
)

var phaseNames = [NumPhases]string{"progression", "behavior", "surfaces", "telemetry"}

func (p Phase) String() string {
	if int(p) < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// tickTiming is everything measured during one tick.
type tickTiming struct {
	total  time.Duration
	phases [NumPhases]time.Duration

	// Pet step time keyed by the mode the pet was in when the step began
	steps [components.NumModes]time.Duration
	count [components.NumModes]int

	slowest SlowStep
}

// SlowStep identifies the most expensive single pet step.
type SlowStep struct {
	Pet      uint32
	Mode     components.Mode
	Duration time.Duration
}

// PerfCollector times ticks, their phases and individual pet steps over a
// rolling window of ticks. It is used from the tick goroutine only.
type PerfCollector struct {
	ring   []tickTiming
	next   int
	filled int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	return newPerfCollector(windowSize, time.Now)
}

func newPerfCollector(windowSize int, now func() time.Time) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickTiming, windowSize), now: now}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = tickTiming{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens the next one.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// RecordStep adds one pet step to the current tick. Steps may be measured on
// worker goroutines but must be recorded from the tick goroutine.
func (p *PerfCollector) RecordStep(pet uint32, mode components.Mode, d time.Duration) {
	if int(mode) >= components.NumModes {
		return
	}
	p.cur.steps[mode] += d
	p.cur.count[mode]++
	if d > p.cur.slowest.Duration {
		p.cur.slowest = SlowStep{Pet: pet, Mode: mode, Duration: d}
	}
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame marks a rendered frame in windowed front ends.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseTiming is the average cost of one phase per tick.
type PhaseTiming struct {
	Avg time.Duration
	Pct float64 // share of the average tick
}

// ModeTiming is the cost of pet steps that began in one mode.
type ModeTiming struct {
	Steps int
	Avg   time.Duration // per step
}

// PerfStats aggregates the window.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64

	Phases  [NumPhases]PhaseTiming
	Modes   [components.NumModes]ModeTiming
	Slowest SlowStep // worst single pet step in the window

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.filled, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	var (
		total  time.Duration
		phases [NumPhases]time.Duration
		steps  [components.NumModes]time.Duration
		count  [components.NumModes]int
	)
	for _, t := range p.ring[:p.filled] {
		total += t.total
		s.MaxTick = max(s.MaxTick, t.total)
		for i, d := range t.phases {
			phases[i] += d
		}
		for m := range steps {
			steps[m] += t.steps[m]
			count[m] += t.count[m]
		}
		if t.slowest.Duration > s.Slowest.Duration {
			s.Slowest = t.slowest
		}
	}

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	for i, d := range phases {
		s.Phases[i].Avg = d / n
		if s.AvgTick > 0 {
			s.Phases[i].Pct = float64(s.Phases[i].Avg) / float64(s.AvgTick) * 100
		}
	}
	for m, c := range count {
		s.Modes[m].Steps = c
		if c > 0 {
			s.Modes[m].Avg = steps[m] / time.Duration(c)
		}
	}
	return s
}

// LogStats logs the window at Info.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for i, ph := range s.Phases {
		if ph.Pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(i).String()+"_pct", ph.Pct))
		}
	}
	for m, mt := range s.Modes {
		if mt.Steps > 0 {
			attrs = append(attrs, slog.Int64(components.Mode(m).String()+"_step_ns", mt.Avg.Nanoseconds()))
		}
	}
	if s.Slowest.Duration > 0 {
		attrs = append(attrs, slog.Group("slowest",
			slog.Any("pet", s.Slowest.Pet),
			slog.String("mode", s.Slowest.Mode.String()),
			slog.Int64("ns", s.Slowest.Duration.Nanoseconds()),
		))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	ProgressionPct float64 `csv:"progression_pct"`
	BehaviorPct    float64 `csv:"behavior_pct"`
	SurfacesPct    float64 `csv:"surfaces_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`

	FallingStepNS  int64 `csv:"falling_step_ns"`
	WalkingStepNS  int64 `csv:"walking_step_ns"`
	JumpingStepNS  int64 `csv:"jumping_step_ns"`
	DelayedStepNS  int64 `csv:"delayed_step_ns"`
	EvolvingStepNS int64 `csv:"evolving_step_ns"`
	DraggedStepNS  int64 `csv:"dragged_step_ns"`

	SlowestPet    uint32 `csv:"slowest_pet"`
	SlowestMode   string `csv:"slowest_mode"`
	SlowestStepNS int64  `csv:"slowest_step_ns"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	step := func(m components.Mode) int64 { return s.Modes[m].Avg.Nanoseconds() }
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		ProgressionPct: s.Phases[PhaseProgression].Pct,
		BehaviorPct:    s.Phases[PhaseBehavior].Pct,
		SurfacesPct:    s.Phases[PhaseSurfaces].Pct,
		TelemetryPct:   s.Phases[PhaseTelemetry].Pct,
		FallingStepNS:  step(components.ModeFalling),
		WalkingStepNS:  step(components.ModeWalking),
		JumpingStepNS:  step(components.ModeJumping),
		DelayedStepNS:  step(components.ModeDelayed),
		EvolvingStepNS: step(components.ModeEvolving),
		DraggedStepNS:  step(components.ModeDragged),
		SlowestPet:     s.Slowest.Pet,
		SlowestMode:    s.Slowest.Mode.String(),
		SlowestStepNS:  s.Slowest.Duration.Nanoseconds(),
	}
}
