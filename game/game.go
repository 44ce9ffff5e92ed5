// Package game owns the pet world: one ECS entity per pet, the tick driver that
// advances them, surface sync, gesture routing and telemetry hooks.
package game

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/config"
	"github.com/pthm-cable/roam/sprite"
	"github.com/pthm-cable/roam/systems"
	"github.com/pthm-cable/roam/telemetry"
	"github.com/pthm-cable/roam/topology"
)

// LevelSource supplies the external progression signal for a pet.
type LevelSource interface {
	Level(name string) int
}

// Cue is played once per completed evolution.
type Cue interface {
	Play()
}

// Options configures a Game. Zero values fall back to the loaded config,
// memory surfaces, the wall clock and a time-based seed.
type Options struct {
	Config         *config.Config
	Seed           int64
	Topology       topology.Provider
	Assets         sprite.Resolver
	Clock          systems.Clock
	Surfaces       SurfaceFactory
	Levels         LevelSource
	Cue            Cue
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	SnapshotDir    string // Save the roster here on Close
	StepsPerUpdate int
	StatsCallback  func(telemetry.WindowStats)
	SkipInitial    bool                // Don't spawn the configured pets
	Restore        *telemetry.Snapshot // Spawn these pets instead of the configured ones
}

// Game holds the complete pet world. It is not safe for concurrent use: front
// ends call it from their own loop goroutine.
type Game struct {
	cfg      *config.Config
	world    *ecs.World
	seed     int64
	rng      *rand.Rand
	behavior *systems.Behavior

	topo     topology.Provider
	lastTopo topology.Topology
	levels   LevelSource
	cue      Cue

	newSurface SurfaceFactory

	// Entity mapper over the seven pet components
	petMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Motion,
		components.Pet,
		components.Drag,
		components.Sprite,
	]
	petFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Body,
		components.Motion,
		components.Pet,
		components.Drag,
		components.Sprite,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map[components.Position]
	velMap    *ecs.Map[components.Velocity]
	bodyMap   *ecs.Map[components.Body]
	motionMap *ecs.Map[components.Motion]
	petMap    *ecs.Map[components.Pet]
	dragMap   *ecs.Map[components.Drag]
	spriteMap *ecs.Map[components.Sprite]

	// Per-pet state outside the ECS, keyed by pet ID
	entities    map[uint32]ecs.Entity
	order       []uint32
	rngs        map[uint32]*rand.Rand
	surfaces    map[uint32]Surface
	floorWarned map[uint32]bool

	slots    []petSlot
	parallel *stepPool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	lifetimes     *telemetry.LifetimeTracker
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	snapshotDir   string
	bookmarks     *telemetry.BookmarkDetector

	tick           int32
	nextID         uint32
	paused         bool
	stepsPerUpdate int
}

// petSlot is one pet prepared for the current tick.
type petSlot struct {
	id     uint32
	ref    systems.PetRef
	rng    *rand.Rand
	before components.Mode
	cycle  int
	out    systems.Outcome
	took   time.Duration
}

// New creates a game and spawns the configured pets.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	provider := opts.Topology
	if provider == nil {
		provider = topology.FromConfig(cfg.Screens)
	}

	newSurface := opts.Surfaces
	if newSurface == nil {
		newSurface = NewMemorySurface
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:        cfg,
		world:      world,
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)),
		behavior:   systems.NewBehavior(systems.ParamsFromConfig(cfg), opts.Assets, opts.Clock),
		topo:       provider,
		levels:     opts.Levels,
		cue:        opts.Cue,
		newSurface: newSurface,
		petMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Motion,
			components.Pet,
			components.Drag,
			components.Sprite,
		](world),
		petFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Body,
			components.Motion,
			components.Pet,
			components.Drag,
			components.Sprite,
		](world),
		posMap:    ecs.NewMap[components.Position](world),
		velMap:    ecs.NewMap[components.Velocity](world),
		bodyMap:   ecs.NewMap[components.Body](world),
		motionMap: ecs.NewMap[components.Motion](world),
		petMap:    ecs.NewMap[components.Pet](world),
		dragMap:   ecs.NewMap[components.Drag](world),
		spriteMap: ecs.NewMap[components.Sprite](world),

		entities:    make(map[uint32]ecs.Entity),
		rngs:        make(map[uint32]*rand.Rand),
		surfaces:    make(map[uint32]Surface),
		floorWarned: make(map[uint32]bool),
		parallel:    newStepPool(),

		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.TickPeriod.Seconds()),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimes:      telemetry.NewLifetimeTracker(),
		bookmarks:      telemetry.NewBookmarkDetector(10),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		snapshotDir:    opts.SnapshotDir,
		stepsPerUpdate: stepsPerUpdate,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, fmt.Errorf("writing config snapshot: %w", err)
		}
		g.outputManager = om
	}

	g.lastTopo = provider.Topology()
	switch {
	case opts.Restore != nil:
		g.Restore(opts.Restore)
	case !opts.SkipInitial:
		for _, p := range cfg.Pets {
			g.Spawn(p.Name, p.Level)
		}
	}

	return g, nil
}

// Spawn creates a pet at a random position inside the configured spawn range
// and returns its ID.
func (g *Game) Spawn(name string, level int) uint32 {
	s := g.cfg.Spawn
	x := float64(s.MinX + g.rng.Intn(s.MaxX-s.MinX+1))
	y := float64(s.MinY + g.rng.Intn(s.MaxY-s.MinY+1))
	return g.SpawnAt(name, level, x, y)
}

// SpawnAt creates a pet with its top-left corner at (x, y) and returns its ID.
func (g *Game) SpawnAt(name string, level int, x, y float64) uint32 {
	id := g.nextID
	g.nextID++

	surf := g.newSurface(Title(name), g.cfg.Sprite.Width, g.cfg.Sprite.Height)
	w, h := surf.Size()

	var (
		pos    components.Position
		vel    components.Velocity
		body   components.Body
		motion components.Motion
		pet    components.Pet
		drag   components.Drag
		spr    components.Sprite
	)
	ref := systems.PetRef{Pos: &pos, Vel: &vel, Body: &body, Motion: &motion, Pet: &pet, Drag: &drag, Sprite: &spr}
	g.behavior.Init(ref, name, level, x, y, w, h)
	pet.ID = id

	entity := g.petMapper.NewEntity(&pos, &vel, &body, &motion, &pet, &drag, &spr)
	g.entities[id] = entity
	g.order = append(g.order, id)
	g.rngs[id] = rand.New(rand.NewSource(g.rng.Int63()))
	g.surfaces[id] = surf

	surf.SetPosition(x, y)
	surf.SetSprite(spr.Active)
	g.lifetimes.Register(pet, g.tick)

	slog.Info("pet spawned", "id", id, "name", name, "level", level, "x", x, "y", y)
	return id
}

// Update runs StepsPerUpdate ticks.
func (g *Game) Update() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// Step runs a single tick: progression, behavior for every pet, surface sync and
// telemetry. It does nothing while paused.
func (g *Game) Step() {
	if g.paused {
		return
	}
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseProgression)
	topo := g.currentTopology()
	g.updateLevels()

	g.perfCollector.StartPhase(telemetry.PhaseBehavior)
	g.collectSlots()
	if len(g.slots) >= g.cfg.Parallel.Threshold {
		g.stepParallel(topo)
	} else {
		g.stepChunk(0, len(g.slots), topo)
	}

	g.perfCollector.StartPhase(telemetry.PhaseSurfaces)
	g.syncSurfaces()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.recordOutcomes()
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// currentTopology reads the provider once per tick and logs hot-plug changes.
func (g *Game) currentTopology() topology.Topology {
	topo := g.topo.Topology()
	if !topo.Equal(g.lastTopo) {
		b := topo.Bounds()
		slog.Info("topology changed",
			"screens", len(topo.Screens),
			"left", b.Left, "top", b.Top, "right", b.Right, "bottom", b.Bottom,
		)
		g.lastTopo = topo
	}
	return topo
}

// updateLevels raises each pet's level to the external signal. Levels never drop.
func (g *Game) updateLevels() {
	if g.levels == nil {
		return
	}
	query := g.petFilter.Query()
	for query.Next() {
		_, _, _, _, pet, _, _ := query.Get()
		if l := g.levels.Level(pet.Name); l > pet.Level {
			pet.Level = l
		}
	}
}

// collectSlots gathers component pointers for every pet. No entity is created or
// removed while the slots are in use.
func (g *Game) collectSlots() {
	g.slots = g.slots[:0]
	query := g.petFilter.Query()
	for query.Next() {
		pos, vel, body, motion, pet, drag, spr := query.Get()
		g.slots = append(g.slots, petSlot{
			id:     pet.ID,
			ref:    systems.PetRef{Pos: pos, Vel: vel, Body: body, Motion: motion, Pet: pet, Drag: drag, Sprite: spr},
			rng:    g.rngs[pet.ID],
			before: motion.Mode,
			cycle:  motion.WalkCycle,
		})
	}
}

// stepChunk advances slots [i0, i1). Each slot is a different pet.
func (g *Game) stepChunk(i0, i1 int, topo topology.Topology) {
	for i := i0; i < i1; i++ {
		s := &g.slots[i]
		start := time.Now()
		s.out = g.behavior.Step(s.ref, s.rng, topo)
		s.took = time.Since(start)
	}
}

// syncSurfaces pushes the committed position, and the sprite when it changed.
func (g *Game) syncSurfaces() {
	for i := range g.slots {
		s := &g.slots[i]
		surf := g.surfaces[s.id]
		if surf == nil {
			continue
		}
		surf.SetPosition(s.ref.Pos.X, s.ref.Pos.Y)
		if s.out.SpriteChanged {
			surf.SetSprite(s.ref.Sprite.Active)
		}
	}
}

// ref returns the component pointers of a live pet.
func (g *Game) ref(id uint32) (systems.PetRef, bool) {
	e, ok := g.entities[id]
	if !ok || !g.world.Alive(e) {
		return systems.PetRef{}, false
	}
	return systems.PetRef{
		Pos:    g.posMap.Get(e),
		Vel:    g.velMap.Get(e),
		Body:   g.bodyMap.Get(e),
		Motion: g.motionMap.Get(e),
		Pet:    g.petMap.Get(e),
		Drag:   g.dragMap.Get(e),
		Sprite: g.spriteMap.Get(e),
	}, true
}

// PetView is a read-only copy of one pet for front ends.
type PetView struct {
	ID     uint32
	Name   string
	Title  string
	Level  int
	Stage  int
	Mode   components.Mode
	Facing int
	X, Y   float64
	VX, VY int
	W, H   int
	Sprite image.Image

	NextAt int     // Level that starts the next evolution, 0 at the final stage
	Pulse  float64 // Evolution pulse progress in [0, 1]
}

// Pets returns every pet in spawn order.
func (g *Game) Pets() []PetView {
	params := g.behavior.Params()
	views := make([]PetView, 0, len(g.order))
	for _, id := range g.order {
		p, ok := g.ref(id)
		if !ok {
			continue
		}
		next, _ := params.Threshold(p.Pet.Stage)
		pulse := 0.0
		if p.Motion.Mode == components.ModeEvolving && params.EvolutionTicks > 0 {
			pulse = float64(p.Motion.EvolveTicks) / float64(params.EvolutionTicks)
		}
		views = append(views, PetView{
			ID:     id,
			Name:   p.Pet.Name,
			Title:  Title(p.Pet.Name),
			Level:  p.Pet.Level,
			Stage:  p.Pet.Stage,
			Mode:   p.Motion.Mode,
			Facing: p.Motion.Facing,
			X:      p.Pos.X,
			Y:      p.Pos.Y,
			VX:     p.Vel.X,
			VY:     p.Vel.Y,
			W:      p.Body.W,
			H:      p.Body.H,
			Sprite: p.Sprite.Active,
			NextAt: next,
			Pulse:  pulse,
		})
	}
	return views
}

// Pet returns the view of one pet.
func (g *Game) Pet(id uint32) (PetView, bool) {
	for _, v := range g.Pets() {
		if v.ID == id {
			return v, true
		}
	}
	return PetView{}, false
}

// SetLevel raises a pet's level. Lower values are ignored. It reports whether
// the pet exists.
func (g *Game) SetLevel(id uint32, level int) bool {
	p, ok := g.ref(id)
	if !ok {
		return false
	}
	if level > p.Pet.Level {
		p.Pet.Level = level
		slog.Info("level raised", "id", id, "name", p.Pet.Name, "level", level)
	}
	return true
}

// SetPaused stops or resumes ticking. Gestures are still applied while paused.
func (g *Game) SetPaused(paused bool) { g.paused = paused }

// Paused reports whether ticking is stopped.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// StepsPerUpdate returns the number of ticks Update runs.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the number of ticks Update runs, clamped to [1, 10].
func (g *Game) SetStepsPerUpdate(n int) { g.stepsPerUpdate = min(max(n, 1), 10) }

// Topology returns the topology used by the last tick.
func (g *Game) Topology() topology.Topology { return g.lastTopo }

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config { return g.cfg }

// Tick returns the current tick.
func (g *Game) Tick() int32 { return g.tick }

// Close stops the worker pool and writes final output.
func (g *Game) Close() error {
	g.stopParallelWorkers()
	if g.snapshotDir != "" {
		path, err := telemetry.SaveSnapshot(g.Snapshot(), g.snapshotDir)
		if err != nil {
			slog.Error("failed to save snapshot", "error", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
		g.snapshotDir = ""
	}
	if g.outputManager == nil {
		return nil
	}
	if err := g.outputManager.WritePets(g.lifetimes.All()); err != nil {
		slog.Error("failed to write pet totals", "error", err)
	}
	err := g.outputManager.Close()
	g.outputManager = nil
	return err
}
