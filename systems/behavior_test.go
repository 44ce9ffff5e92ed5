package systems

import (
	"errors"
	"image"
	"math"
	"math/rand"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/sprite"
	"github.com/pthm-cable/roam/topology"
)

// scriptRand replays fixed draws. Once exhausted, Float64 returns 0.99 (no
// transition fires) and Intn returns 0.
type scriptRand struct {
	floats []float64
	ints   []int
}

func (r *scriptRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

// stageResolver hands out one fixed image per stage and fails for missing ones.
type stageResolver map[int]image.Image

func (r stageResolver) Resolve(name string, stage int) (image.Image, error) {
	if img, ok := r[stage]; ok {
		return img, nil
	}
	return nil, sprite.ErrAssetNotFound
}

func singleScreen() topology.Topology {
	return topology.New(topology.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080})
}

func dualScreens() topology.Topology {
	return topology.New(
		topology.Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080},
		topology.Rect{Left: 1920, Top: -200, Right: 3200, Bottom: 824},
	)
}

// floorY is the active floor of singleScreen for a 128px pet.
const floorY = 1080 - 128 - 20

func stages() stageResolver {
	return stageResolver{
		0: sprite.Placeholder("test", 0, 16, 16),
		1: sprite.Placeholder("test", 1, 16, 16),
		2: sprite.Placeholder("test", 2, 16, 16),
	}
}

func newPet(t *testing.T, b *Behavior, x, y float64, level int) (*State, PetRef) {
	t.Helper()
	s := &State{}
	p := s.Ref()
	b.Init(p, "test", level, x, y, 128, 128)
	return s, p
}

// walkingPet returns a pet already standing on the single screen floor.
func walkingPet(t *testing.T, b *Behavior, level int) (*State, PetRef) {
	t.Helper()
	s, p := newPet(t, b, 800, floorY, level)
	b.Step(p, &scriptRand{}, singleScreen())
	if s.Motion.Mode.Airborne() {
		t.Fatalf("expected pet to land, got mode %v", s.Motion.Mode)
	}
	return s, p
}

func TestInitialState(t *testing.T) {
	assets := stages()
	b := NewBehavior(DefaultParams(), assets, nil)
	s, _ := newPet(t, b, 600, 300, 5)

	if s.Motion.Mode != components.ModeFalling {
		t.Errorf("expected falling, got %v", s.Motion.Mode)
	}
	if s.Motion.Facing != -1 || s.Velocity.X != -2 || s.Velocity.Y != 0 {
		t.Errorf("expected facing -1 with vx -2, got facing %d vel %+v", s.Motion.Facing, s.Velocity)
	}
	if s.Sprite.Active != assets[0] {
		t.Error("expected stage 0 sprite")
	}
}

func TestInitFallsBackToPlaceholder(t *testing.T) {
	b := NewBehavior(DefaultParams(), stageResolver{}, nil)
	s, _ := newPet(t, b, 600, 300, 5)
	if s.Sprite.Active == nil || s.Sprite.Active.Bounds().Dx() != 128 {
		t.Errorf("expected 128px placeholder, got %v", s.Sprite.Active)
	}
}

func TestFallingAccumulatesGravity(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 800, 0, 5)
	s.Velocity.X = 0

	for i := 1; i <= 10; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
		if s.Velocity.Y != i {
			t.Fatalf("tick %d: expected vy %d, got %d", i, i, s.Velocity.Y)
		}
	}
	// y = 1 + 2 + ... + 10
	if s.Position.Y != 55 {
		t.Errorf("expected y 55, got %v", s.Position.Y)
	}
}

func TestTerminalVelocity(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 800, -100000, 5)
	topo := topology.New(topology.Rect{Left: 0, Top: -100000, Right: 1920, Bottom: 1080})
	s.Velocity.X = 80

	for i := 0; i < 100; i++ {
		b.Step(p, &scriptRand{}, topo)
		if s.Velocity.Y > 50 || s.Velocity.X > 50 {
			t.Fatalf("tick %d: velocity %+v exceeds terminal velocity", i, s.Velocity)
		}
	}
	if s.Velocity.Y != 50 {
		t.Errorf("expected vy capped at 50, got %d", s.Velocity.Y)
	}
}

func TestFloorConvergence(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	rng := rand.New(rand.NewSource(7))
	topo := dualScreens()

	for trial := 0; trial < 500; trial++ {
		x := rng.Float64() * 3000
		y := -200 + rng.Float64()*800
		s, p := newPet(t, b, x, y, 5)
		s.Velocity.X = rng.Intn(101) - 50
		s.Velocity.Y = rng.Intn(61) - 30

		landed := false
		for tick := 0; tick < 200; tick++ {
			out := b.Step(p, &scriptRand{}, topo)
			if out.Events.Has(EventLanded) {
				landed = true
				break
			}
		}
		if !landed {
			t.Fatalf("trial %d: pet from (%.0f, %.0f) never landed; mode %v at %+v",
				trial, x, y, s.Motion.Mode, s.Position)
		}
	}
}

func TestLandingStartsWalking(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 800, floorY, 5)
	s.Motion.Facing = 1
	s.Velocity = components.Velocity{X: 17, Y: 33}
	s.Motion.AirTicks = 12

	out := b.Step(p, &scriptRand{}, singleScreen())

	if !out.Events.Has(EventLanded) || out.AirTicks != 12 {
		t.Errorf("expected landing after 12 air ticks, got %+v", out)
	}
	if s.Motion.Mode != components.ModeWalking {
		t.Errorf("expected walking, got %v", s.Motion.Mode)
	}
	if s.Velocity.X != 2 || s.Velocity.Y != 0 {
		t.Errorf("expected velocity (2, 0), got %+v", s.Velocity)
	}
	// Walking runs in the landing tick
	if s.Motion.WalkCycle != 1 || s.Position.X != 802 {
		t.Errorf("expected one walk step, got cycle %d at x %v", s.Motion.WalkCycle, s.Position.X)
	}
}

func TestWalkingBobStaysOnOrAboveFloor(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := walkingPet(t, b, 5)

	seenAbove := false
	for i := 0; i < 50; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
		want := math.Min(math.Floor(floorY+5*math.Sin(float64(s.Motion.WalkCycle)*0.5)), floorY)
		if s.Position.Y != want {
			t.Fatalf("cycle %d: expected y %v, got %v", s.Motion.WalkCycle, want, s.Position.Y)
		}
		if s.Position.Y < floorY {
			seenAbove = true
		}
	}
	if !seenAbove {
		t.Error("expected the bob to lift the pet above the floor")
	}
}

func TestWalkTransitions(t *testing.T) {
	tests := []struct {
		name   string
		rng    *scriptRand
		want   Event
		mode   components.Mode
		facing int
	}{
		{"flip", &scriptRand{floats: []float64{0.001}}, EventFlipped, components.ModeWalking, 1},
		{"delay", &scriptRand{floats: []float64{0.5, 0.004}, ints: []int{1000}}, EventDelayed, components.ModeDelayed, -1},
		{"jump", &scriptRand{floats: []float64{0.5, 0.5, 0.0009}, ints: []int{5}}, EventJumped, components.ModeJumping, -1},
		{"nothing", &scriptRand{floats: []float64{0.5, 0.5, 0.5}}, 0, components.ModeWalking, -1},
		{"flip wins over delay", &scriptRand{floats: []float64{0.0001, 0.0001, 0.0001}}, EventFlipped, components.ModeWalking, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBehavior(DefaultParams(), stages(), NewManualClock(time.Unix(0, 0)))
			s, p := walkingPet(t, b, 5)

			out := b.Step(p, tc.rng, singleScreen())

			transitions := out.Events & (EventFlipped | EventDelayed | EventJumped)
			if transitions != tc.want {
				t.Errorf("expected transitions %b, got %b", tc.want, transitions)
			}
			if s.Motion.Mode != tc.mode {
				t.Errorf("expected mode %v, got %v", tc.mode, s.Motion.Mode)
			}
			if s.Motion.Facing != tc.facing {
				t.Errorf("expected facing %d, got %d", tc.facing, s.Motion.Facing)
			}
			if (s.Velocity.X > 0) != (s.Motion.Facing > 0) {
				t.Errorf("vx %d disagrees with facing %d", s.Velocity.X, s.Motion.Facing)
			}
		})
	}
}

func TestJumpVelocity(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := walkingPet(t, b, 5)
	yBefore := s.Position.Y

	b.Step(p, &scriptRand{floats: []float64{0.5, 0.5, 0.0}, ints: []int{5}}, singleScreen())

	if s.Velocity.Y != -25 {
		t.Errorf("expected vy -25, got %d", s.Velocity.Y)
	}
	if s.Position.Y >= yBefore {
		t.Errorf("expected pet to rise from %v, got %v", yBefore, s.Position.Y)
	}

	// Airborne: no walking and no new transitions until landing
	cycle := s.Motion.WalkCycle
	landed := false
	for i := 0; i < 100 && !landed; i++ {
		out := b.Step(p, &scriptRand{floats: []float64{0, 0, 0}}, singleScreen())
		landed = out.Events.Has(EventLanded)
		if !landed && s.Motion.WalkCycle != cycle {
			t.Fatal("walk cycle advanced while airborne")
		}
	}
	if !landed {
		t.Fatal("jump never landed")
	}
}

func TestDelayUsesWallClock(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	b := NewBehavior(DefaultParams(), stages(), clock)
	s, p := walkingPet(t, b, 5)

	// Intn(2001) = 500 -> 2500ms
	b.Step(p, &scriptRand{floats: []float64{0.5, 0.0}, ints: []int{500}}, singleScreen())
	if s.Motion.Mode != components.ModeDelayed {
		t.Fatalf("expected delayed, got %v", s.Motion.Mode)
	}
	if got := s.Motion.DelayUntil.Sub(clock.Now()); got != 2500*time.Millisecond {
		t.Errorf("expected 2.5s delay, got %v", got)
	}

	x, cycle := s.Position.X, s.Motion.WalkCycle
	for i := 0; i < 1000; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
	}
	if s.Position.X != x || s.Motion.WalkCycle != cycle {
		t.Error("pet moved while delayed")
	}

	clock.Advance(2500 * time.Millisecond)
	b.Step(p, &scriptRand{}, singleScreen())
	if s.Motion.Mode != components.ModeWalking || s.Motion.WalkCycle != cycle+1 {
		t.Errorf("expected walking to resume, got %v cycle %d", s.Motion.Mode, s.Motion.WalkCycle)
	}
}

func TestDelayRange(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	b := NewBehavior(DefaultParams(), stages(), clock)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		s, p := walkingPet(t, b, 5)
		b.delay(p, rng, &Outcome{})
		d := s.Motion.DelayUntil.Sub(clock.Now())
		if d < MinDelay || d > MaxDelay {
			t.Fatalf("delay %v outside [%v, %v]", d, MinDelay, MaxDelay)
		}
	}
}

// TestTransitionFrequencies checks the fixed Bernoulli chances over many walking ticks.
func TestTransitionFrequencies(t *testing.T) {
	const n = 200000
	b := NewBehavior(DefaultParams(), stages(), NewManualClock(time.Unix(0, 0)))
	rng := rand.New(rand.NewSource(42))

	var flips, delays, jumps int
	s, p := walkingPet(t, b, 5)
	for i := 0; i < n; i++ {
		// Reset to a plain walking pet each trial
		s.Motion.Mode = components.ModeWalking
		s.Position.Y = floorY
		s.Velocity = components.Velocity{X: 2 * s.Motion.Facing}

		out := b.Step(p, rng, singleScreen())
		switch {
		case out.Events.Has(EventFlipped):
			flips++
		case out.Events.Has(EventDelayed):
			delays++
		case out.Events.Has(EventJumped):
			jumps++
		}
	}

	checks := []struct {
		name  string
		count int
		p     float64
	}{
		{"flip", flips, FlipChance},
		{"delay", delays, (1 - FlipChance) * DelayChance},
		{"jump", jumps, (1 - FlipChance) * (1 - DelayChance) * JumpChance},
	}
	for _, c := range checks {
		dist := distuv.Binomial{N: n, P: c.p}
		lo, hi := dist.Mean()-5*dist.StdDev(), dist.Mean()+5*dist.StdDev()
		if float64(c.count) < lo || float64(c.count) > hi {
			t.Errorf("%s: %d occurrences outside [%.0f, %.0f]", c.name, c.count, lo, hi)
		}
	}
}

func TestContainmentInvariant(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), NewManualClock(time.Unix(0, 0)))
	rng := rand.New(rand.NewSource(3))
	topos := []topology.Topology{
		dualScreens(),
		singleScreen(),
		topology.New(
			topology.Rect{Left: -1280, Top: 0, Right: 0, Bottom: 1024},
			topology.Rect{Left: 0, Top: 0, Right: 2560, Bottom: 1440},
		),
	}

	for trial := 0; trial < 30; trial++ {
		s, p := newPet(t, b, rng.Float64()*3000, rng.Float64()*1000, 5)
		for tick := 0; tick < 2000; tick++ {
			// Hot-plug: the topology may change at any tick boundary
			topo := topos[(tick/400+trial)%len(topos)]
			b.Step(p, rng, topo)

			bounds := topo.Bounds()
			if s.Position.X < bounds.Left || s.Position.X > bounds.Right-128 {
				t.Fatalf("trial %d tick %d: x %v outside [%v, %v]", trial, tick, s.Position.X, bounds.Left, bounds.Right-128)
			}
			floor, ok := topo.Floor(s.Position.X, 128, 20)
			if !ok {
				t.Fatalf("trial %d tick %d: no screen at x %v", trial, tick, s.Position.X)
			}
			if s.Position.Y < bounds.Top || s.Position.Y > floor {
				t.Fatalf("trial %d tick %d: y %v outside [%v, %v] (mode %v)", trial, tick, s.Position.Y, bounds.Top, floor, s.Motion.Mode)
			}
		}
	}
}

func TestContainmentFloorFallback(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	gapped := topology.New(
		topology.Rect{Left: 0, Top: 0, Right: 1000, Bottom: 1000},
		topology.Rect{Left: 2000, Top: 0, Right: 3000, Bottom: 600},
	)
	s, p := newPet(t, b, 500, 852, 5)
	b.Step(p, &scriptRand{}, gapped)
	if s.Motion.Floor != 852 {
		t.Fatalf("expected floor 852, got %v", s.Motion.Floor)
	}

	// Into the gap: the last floor is kept
	s.Position = components.Position{X: 1500, Y: 900}
	ev := b.Contain(p, gapped)
	if !ev.Has(EventFloorFallback) {
		t.Error("expected floor fallback event")
	}
	if s.Position.Y != 852 {
		t.Errorf("expected y clamped to last floor 852, got %v", s.Position.Y)
	}
}

func TestContainmentEmptyTopology(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 500, 300, 5)

	for i := 0; i < 10; i++ {
		out := b.Step(p, &scriptRand{}, topology.Topology{})
		if !out.Events.Has(EventFloorFallback) {
			t.Fatal("expected floor fallback without screens")
		}
	}
	if s.Position.Y > 300 || s.Position.Y < 295 || s.Motion.Mode != components.ModeWalking {
		t.Errorf("expected pet to walk at its starting height, got %+v mode %v", s.Position, s.Motion.Mode)
	}
}

func TestEvolutionCompletion(t *testing.T) {
	assets := stages()
	b := NewBehavior(DefaultParams(), assets, nil)
	s, p := walkingPet(t, b, 20)

	if s.Motion.Mode != components.ModeEvolving {
		t.Fatalf("expected evolution to start on the first grounded tick, got %v", s.Motion.Mode)
	}

	pos := s.Position
	for tick := 1; tick < 100; tick++ {
		b.Step(p, &scriptRand{floats: []float64{0, 0, 0}}, singleScreen())
		if s.Pet.Stage != 0 {
			t.Fatalf("tick %d: stage advanced early", tick)
		}
		tinted, ok := s.Sprite.Active.(*sprite.Tinted)
		if !ok {
			t.Fatalf("tick %d: expected tinted sprite, got %T", tick, s.Sprite.Active)
		}
		if tinted.Base != assets[0] {
			t.Fatalf("tick %d: tint must be applied to the stage 0 sprite", tick)
		}
		if s.Position != pos {
			t.Fatalf("tick %d: pet moved while evolving", tick)
		}
	}

	out := b.Step(p, &scriptRand{}, singleScreen())
	if !out.Events.Has(EventEvolved) {
		t.Error("expected evolved event on tick 100")
	}
	if s.Pet.Stage != 1 {
		t.Errorf("expected stage 1, got %d", s.Pet.Stage)
	}
	if s.Sprite.Active != assets[1] {
		t.Error("expected the stage 1 asset to be active")
	}
	if s.Motion.Mode != components.ModeFalling {
		t.Errorf("expected falling after evolution, got %v", s.Motion.Mode)
	}

	// Level 20 is below the next threshold: the pet settles and keeps walking
	for i := 0; i < 10; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
	}
	if s.Motion.Mode != components.ModeWalking || s.Pet.Stage != 1 {
		t.Errorf("expected walking at stage 1, got %v stage %d", s.Motion.Mode, s.Pet.Stage)
	}
}

func TestEvolutionBothThresholds(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 800, floorY, 40)

	for i := 0; i < 400; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
	}
	if s.Pet.Stage != 2 {
		t.Errorf("expected stage 2 at level 40, got %d", s.Pet.Stage)
	}
	if s.Motion.Mode != components.ModeWalking {
		t.Errorf("expected walking after the last stage, got %v", s.Motion.Mode)
	}
}

func TestEvolutionAssetFallback(t *testing.T) {
	assets := stageResolver{0: sprite.Placeholder("test", 0, 16, 16)}
	b := NewBehavior(DefaultParams(), assets, nil)
	s, p := walkingPet(t, b, 15)

	var out Outcome
	for i := 0; i < 100; i++ {
		out = b.Step(p, &scriptRand{}, singleScreen())
	}
	if !out.Events.Has(EventAssetFallback | EventEvolved) {
		t.Errorf("expected evolved with asset fallback, got %b", out.Events)
	}
	if s.Pet.Stage != 1 {
		t.Errorf("expected stage to advance to 1, got %d", s.Pet.Stage)
	}
	if s.Sprite.Active != assets[0] || s.Sprite.Stage != 0 {
		t.Error("expected the stage 0 sprite to stay active")
	}
}

func TestEvolutionWithoutResolver(t *testing.T) {
	b := NewBehavior(DefaultParams(), nil, nil)
	s, p := walkingPet(t, b, 15)
	for i := 0; i < 100; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
	}
	if s.Pet.Stage != 1 || s.Sprite.Active == nil {
		t.Errorf("expected stage 1 with a valid sprite, got stage %d", s.Pet.Stage)
	}
}

func TestFlipMirrorsSprite(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := walkingPet(t, b, 5)

	for i := 0; i < 4; i++ {
		before := s.Sprite.Active
		out := b.Step(p, &scriptRand{floats: []float64{0}}, singleScreen())
		if !out.Events.Has(EventFlipped) || !out.SpriteChanged {
			t.Fatalf("flip %d: expected flip with sprite change", i)
		}
		if !sprite.Equal(s.Sprite.Active, sprite.Mirror(before)) {
			t.Fatalf("flip %d: active sprite is not the mirror of the previous one", i)
		}
	}
}

func TestDragOverride(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := walkingPet(t, b, 5)
	s.Position = components.Position{X: 90, Y: 95}
	s.Velocity = components.Velocity{X: 2, Y: 7}

	DragStart(p, 100, 100)
	DragMove(p, 110, 105)
	if s.Position != (components.Position{X: 100, Y: 100}) {
		t.Errorf("expected pointer minus (10, 5) anchor = (100, 100), got %+v", s.Position)
	}
	if s.Velocity != (components.Velocity{}) {
		t.Errorf("expected zero velocity on the first sample, got %+v", s.Velocity)
	}

	DragMove(p, 130.7, 96.2)
	if s.Velocity != (components.Velocity{X: 20, Y: -9}) {
		t.Errorf("expected floored delta (20, -9), got %+v", s.Velocity)
	}

	// Physics is suspended: no clamping of an off-screen drag
	DragMove(p, -500, -500)
	pos := s.Position
	b.Step(p, &scriptRand{}, singleScreen())
	if s.Position != pos || s.Motion.Mode != components.ModeDragged {
		t.Errorf("step moved a dragged pet: %+v mode %v", s.Position, s.Motion.Mode)
	}

	vel := s.Velocity
	out := DragEnd(p)
	if !out.Events.Has(EventDragEnded) || s.Motion.Mode != components.ModeFalling {
		t.Errorf("expected release into falling, got %v", s.Motion.Mode)
	}
	if s.Velocity != vel {
		t.Errorf("expected velocity %+v retained, got %+v", vel, s.Velocity)
	}

	// Released pets are contained again
	b.Step(p, &scriptRand{}, singleScreen())
	if s.Position.X < 0 || s.Position.Y < 0 {
		t.Errorf("expected containment after release, got %+v", s.Position)
	}
}

func TestDragInvalidTransitionsAreNoops(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := walkingPet(t, b, 5)
	before := *s

	DragMove(p, 10, 10)
	out := DragEnd(p)
	if out.Events != 0 {
		t.Errorf("expected no events, got %b", out.Events)
	}
	if s.Position != before.Position || s.Motion.Mode != before.Motion.Mode {
		t.Error("gestures without a drag changed the pet")
	}
}

func TestDragInterruptsEvolution(t *testing.T) {
	assets := stages()
	b := NewBehavior(DefaultParams(), assets, nil)
	s, p := walkingPet(t, b, 20)
	for i := 0; i < 50; i++ {
		b.Step(p, &scriptRand{}, singleScreen())
	}

	DragStart(p, s.Position.X, s.Position.Y)
	if s.Sprite.Active != assets[0] {
		t.Error("expected the untinted sprite while dragged")
	}
	DragEnd(p)

	// Back on the floor, the full pulse replays
	var evolvedAt int
	for i := 1; i <= 300 && evolvedAt == 0; i++ {
		if b.Step(p, &scriptRand{}, singleScreen()).Events.Has(EventEvolved) {
			evolvedAt = i
		}
	}
	if evolvedAt < 100 {
		t.Errorf("expected a full 100 tick pulse after the drag, evolved after %d", evolvedAt)
	}
	if s.Pet.Stage != 1 {
		t.Errorf("expected stage 1, got %d", s.Pet.Stage)
	}
}

func TestEvolutionStartsWhileDelayed(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	b := NewBehavior(DefaultParams(), stages(), clock)
	s, p := walkingPet(t, b, 5)
	b.Step(p, &scriptRand{floats: []float64{0.5, 0}}, singleScreen())
	if s.Motion.Mode != components.ModeDelayed {
		t.Fatalf("expected delayed, got %v", s.Motion.Mode)
	}

	s.Pet.Level = 15
	out := b.Step(p, &scriptRand{}, singleScreen())
	if !out.Events.Has(EventEvolveStarted) {
		t.Error("expected evolution to start while delayed")
	}
}

func TestParamsThreshold(t *testing.T) {
	p := DefaultParams()
	if v, ok := p.Threshold(0); !ok || v != 15 {
		t.Errorf("stage 0: got %d %v", v, ok)
	}
	if v, ok := p.Threshold(1); !ok || v != 36 {
		t.Errorf("stage 1: got %d %v", v, ok)
	}
	if _, ok := p.Threshold(2); ok {
		t.Error("stage 2 should be final")
	}
	if _, ok := p.Threshold(-1); ok {
		t.Error("negative stage has no threshold")
	}
}

func TestResolveError(t *testing.T) {
	b := NewBehavior(DefaultParams(), nil, nil)
	if _, err := b.resolve("x", 1); !errors.Is(err, sprite.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestRestoreStageAndFacing(t *testing.T) {
	b := NewBehavior(DefaultParams(), stages(), nil)
	s, p := newPet(t, b, 600, 300, 20)

	b.Restore(p, 2, 1)
	if s.Pet.Stage != 2 || s.Sprite.Stage != 2 {
		t.Errorf("expected stage 2, got pet %d sprite %d", s.Pet.Stage, s.Sprite.Stage)
	}
	if s.Motion.Facing != 1 || s.Velocity.X != 2 {
		t.Errorf("expected facing right at walk speed, got facing %d vx %d", s.Motion.Facing, s.Velocity.X)
	}
	if s.Sprite.Flipped == nil || s.Sprite.Active != s.Sprite.Flipped {
		t.Error("expected mirrored sprite to be active")
	}

	// Stages never go back.
	b.Restore(p, 1, 0)
	if s.Pet.Stage != 2 || s.Motion.Facing != 1 {
		t.Errorf("restore lowered state: stage %d facing %d", s.Pet.Stage, s.Motion.Facing)
	}
}
