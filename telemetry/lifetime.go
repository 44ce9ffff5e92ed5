package telemetry

import (
	"sort"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/systems"
)

// LifetimeStats tracks per-pet totals since spawn. Written to pets.csv on close.
type LifetimeStats struct {
	PetID     uint32 `csv:"pet_id"`
	Name      string `csv:"name"`
	SpawnTick int32  `csv:"spawn_tick"`
	Stage     int    `csv:"stage"`
	Level     int    `csv:"level"`

	// Ticks spent in each mode
	FallingTicks  int `csv:"falling_ticks"`
	WalkingTicks  int `csv:"walking_ticks"`
	JumpingTicks  int `csv:"jumping_ticks"`
	DelayedTicks  int `csv:"delayed_ticks"`
	EvolvingTicks int `csv:"evolving_ticks"`
	DraggedTicks  int `csv:"dragged_ticks"`

	Flips      int `csv:"flips"`
	Jumps      int `csv:"jumps"`
	Delays     int `csv:"delays"`
	Evolutions int `csv:"evolutions"`
	Drags      int `csv:"drags"`
}

// LifetimeTracker manages per-pet lifetime statistics.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new pet.
func (lt *LifetimeTracker) Register(pet components.Pet, spawnTick int32) {
	lt.stats[pet.ID] = &LifetimeStats{
		PetID:     pet.ID,
		Name:      pet.Name,
		SpawnTick: spawnTick,
		Stage:     pet.Stage,
		Level:     pet.Level,
	}
}

// Get returns the lifetime stats for a pet, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Record accounts one step of a pet: the mode it ended in and what happened.
func (lt *LifetimeTracker) Record(pet components.Pet, mode components.Mode, out systems.Outcome) {
	s := lt.stats[pet.ID]
	if s == nil {
		return
	}
	s.Stage = pet.Stage
	s.Level = pet.Level

	switch mode {
	case components.ModeFalling:
		s.FallingTicks++
	case components.ModeWalking:
		s.WalkingTicks++
	case components.ModeJumping:
		s.JumpingTicks++
	case components.ModeDelayed:
		s.DelayedTicks++
	case components.ModeEvolving:
		s.EvolvingTicks++
	case components.ModeDragged:
		s.DraggedTicks++
	}
	s.count(out)
}

// RecordEvents accounts events that happened outside a tick, such as gestures.
func (lt *LifetimeTracker) RecordEvents(pet components.Pet, out systems.Outcome) {
	if s := lt.stats[pet.ID]; s != nil {
		s.count(out)
	}
}

func (s *LifetimeStats) count(out systems.Outcome) {
	ev := out.Events
	if ev.Has(systems.EventFlipped) {
		s.Flips++
	}
	if ev.Has(systems.EventJumped) {
		s.Jumps++
	}
	if ev.Has(systems.EventDelayed) {
		s.Delays++
	}
	if ev.Has(systems.EventEvolved) {
		s.Evolutions++
	}
	if ev.Has(systems.EventDragStarted) {
		s.Drags++
	}
}

// All returns a copy of every pet's stats ordered by pet ID.
func (lt *LifetimeTracker) All() []LifetimeStats {
	out := make([]LifetimeStats, 0, len(lt.stats))
	for _, s := range lt.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PetID < out[j].PetID })
	return out
}
