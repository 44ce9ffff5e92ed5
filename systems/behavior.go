// Package systems contains the per-pet behavior state machine: physics integration,
// random behavior transitions, boundary containment, evolution and dragging.
package systems

import (
	"image"
	"image/color"
	"time"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/config"
	"github.com/pthm-cable/roam/sprite"
	"github.com/pthm-cable/roam/topology"
)

// Per-tick transition probabilities while walking, checked in this order.
// At most one fires per tick.
const (
	FlipChance  = 0.005
	DelayChance = 0.005
	JumpChance  = 0.001
)

// Delay and jump ranges (inclusive).
const (
	MinDelay        = 2000 * time.Millisecond
	MaxDelay        = 4000 * time.Millisecond
	MinJumpVelocity = -30
	MaxJumpVelocity = -15
)

// Params holds the movement constants shared by every pet.
type Params struct {
	GroundOffset     float64
	TerminalVelocity int
	WalkSpeed        int
	BobAmplitude     float64
	BobFrequency     float64
	EvolutionTicks   int
	Thresholds       []int // Thresholds[stage] is the level needed to leave stage
	Tint             color.NRGBA
}

// DefaultParams returns the built-in constants.
func DefaultParams() Params {
	return Params{
		GroundOffset:     20,
		TerminalVelocity: 50,
		WalkSpeed:        2,
		BobAmplitude:     5,
		BobFrequency:     0.5,
		EvolutionTicks:   100,
		Thresholds:       []int{15, 36},
		Tint:             color.NRGBA{R: 255, G: 255, B: 255, A: 200},
	}
}

// ParamsFromConfig maps config sections onto Params.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		GroundOffset:     float64(cfg.Sprite.GroundOffset),
		TerminalVelocity: cfg.Physics.TerminalVelocity,
		WalkSpeed:        cfg.Physics.WalkSpeed,
		BobAmplitude:     cfg.Physics.BobAmplitude,
		BobFrequency:     cfg.Physics.BobFrequency,
		EvolutionTicks:   cfg.Evolution.Ticks,
		Thresholds:       cfg.Evolution.Thresholds,
		Tint:             cfg.Derived.Tint,
	}
}

// Threshold returns the level needed to evolve out of stage, if any.
func (p Params) Threshold(stage int) (int, bool) {
	if stage < 0 || stage >= len(p.Thresholds) {
		return 0, false
	}
	return p.Thresholds[stage], true
}

// Event flags what happened to a pet during one step.
type Event uint16

const (
	EventLanded Event = 1 << iota
	EventFlipped
	EventDelayed
	EventJumped
	EventEvolveStarted
	EventEvolved
	EventAssetFallback
	EventFloorFallback
	EventDragStarted
	EventDragEnded
)

// Has reports whether all flags in f are set.
func (e Event) Has(f Event) bool { return e&f == f }

// Outcome reports the result of one step.
type Outcome struct {
	Events        Event
	SpriteChanged bool
	AirTicks      int // Ticks spent airborne, set on landing
}

// PetRef bundles pointers to one pet's components. A PetRef must be stepped by
// one goroutine at a time; different pets may be stepped concurrently.
type PetRef struct {
	Pos    *components.Position
	Vel    *components.Velocity
	Body   *components.Body
	Motion *components.Motion
	Pet    *components.Pet
	Drag   *components.Drag
	Sprite *components.Sprite
}

// State is a standalone pet for use outside an ECS world.
type State struct {
	Position components.Position
	Velocity components.Velocity
	Body     components.Body
	Motion   components.Motion
	Pet      components.Pet
	Drag     components.Drag
	Sprite   components.Sprite
}

// Ref returns pointers into s.
func (s *State) Ref() PetRef {
	return PetRef{
		Pos:    &s.Position,
		Vel:    &s.Velocity,
		Body:   &s.Body,
		Motion: &s.Motion,
		Pet:    &s.Pet,
		Drag:   &s.Drag,
		Sprite: &s.Sprite,
	}
}

// Behavior advances pets one tick at a time. It holds no per-pet state and is
// safe for concurrent use on distinct pets.
type Behavior struct {
	params Params
	assets sprite.Resolver
	clock  Clock
}

// NewBehavior creates a behavior stepper. assets may be nil, in which case
// evolution always keeps the previous sprite.
func NewBehavior(params Params, assets sprite.Resolver, clock Clock) *Behavior {
	if clock == nil {
		clock = WallClock{}
	}
	return &Behavior{params: params, assets: assets, clock: clock}
}

// Params returns the constants this behavior runs with.
func (b *Behavior) Params() Params { return b.params }

// Init puts a freshly created pet into its initial state: falling, facing left,
// drifting left at walk speed, showing its stage-0 sprite.
func (b *Behavior) Init(p PetRef, name string, level int, x, y float64, w, h int) {
	*p.Pos = components.Position{X: x, Y: y}
	*p.Vel = components.Velocity{X: -b.params.WalkSpeed}
	*p.Body = components.Body{W: w, H: h}
	*p.Motion = components.Motion{Mode: components.ModeFalling, Facing: -1}
	p.Pet.Name = name
	p.Pet.Level = level
	p.Pet.Stage = 0
	*p.Drag = components.Drag{}

	*p.Sprite = components.Sprite{Base: b.loadInitial(name, w, h)}
	p.Sprite.Active = p.Sprite.Base
}

func (b *Behavior) loadInitial(name string, w, h int) image.Image {
	return b.loadStage(name, 0, w, h)
}

func (b *Behavior) loadStage(name string, stage, w, h int) image.Image {
	if b.assets != nil {
		img, err := b.assets.Resolve(name, stage)
		if err == nil {
			return img
		}
		logAssetFallback(name, stage, err)
	}
	return sprite.Placeholder(name, stage, w, h)
}

// Restore moves a freshly initialised pet to a saved stage and facing. It is
// used when pets are brought back from a snapshot and never lowers the stage.
func (b *Behavior) Restore(p PetRef, stage, facing int) {
	if stage > p.Pet.Stage {
		p.Pet.Stage = stage
		p.Sprite.Base = b.loadStage(p.Pet.Name, stage, p.Body.W, p.Body.H)
		p.Sprite.Flipped = nil
		p.Sprite.Stage = stage
	}
	if facing == 1 || facing == -1 {
		p.Motion.Facing = facing
		p.Vel.X = facing * b.params.WalkSpeed
	}
	p.Sprite.Active = Orient(p.Sprite, p.Motion.Facing)
}

// Step advances p by one tick against the given topology. A dragged pet is left
// untouched; otherwise the pet evolves, or falls, or walks, and is then contained.
func (b *Behavior) Step(p PetRef, rng Rand, topo topology.Topology) Outcome {
	var out Outcome
	if p.Drag.Active || p.Motion.Mode == components.ModeDragged {
		return out
	}

	if p.Motion.Mode == components.ModeEvolving {
		b.evolveTick(p, &out)
	} else {
		floor, _ := b.floor(p, topo)
		if !b.fall(p, floor, &out) {
			b.walk(p, floor, rng, &out)
			b.checkEvolution(p, &out)
		}
	}

	out.Events |= b.Contain(p, topo)
	b.checkInvariants(p)
	return out
}

func (b *Behavior) checkInvariants(p PetRef) {
	m := p.Motion
	assertf(p.Pet.Stage >= 0, "pet %q has negative stage %d", p.Pet.Name, p.Pet.Stage)
	assertf(m.Facing == 1 || m.Facing == -1, "pet %q facing %d", p.Pet.Name, m.Facing)
	if m.Mode == components.ModeWalking && p.Vel.X != 0 {
		assertf((p.Vel.X > 0) == (m.Facing > 0), "pet %q walks with vx %d facing %d", p.Pet.Name, p.Vel.X, m.Facing)
	}
}
