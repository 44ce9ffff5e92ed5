package renderer

import (
	"errors"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/camera"
	"github.com/pthm-cable/roam/config"
	"github.com/pthm-cable/roam/game"
	"github.com/pthm-cable/roam/topology"
	"github.com/pthm-cable/roam/ui"
)

const (
	windowW = 1280
	windowH = 800
	panelW  = 260
)

const controlsLegend = "Drag pets with the left mouse | Right drag: pan | Wheel: zoom | Space: pause | N: step | +/-: speed | R: reset view | Tab: overlays | H: panel"

// App is the windowed front end: a scaled preview of every monitor with the
// pets drawn as textures on it.
type App struct {
	cfg      *config.Config
	game     *game.Game
	cam      *camera.Camera
	surfaces *Surfaces
	desktop  *DesktopRenderer
	input    game.PointerTracker

	hud       *ui.HUD
	levels    *ui.LevelPanel
	inspector *ui.Inspector
	controls  *ui.ControlsPanel
	perf      *ui.PerfPanel
	overlays  *ui.OverlayRegistry

	world      topology.Rect
	period     float64
	acc        float64
	maxCatchUp int
}

// Run opens the preview window and drives the game until the window is closed
// or maxTicks is reached (0 = unlimited). opts.Topology and opts.Surfaces are
// replaced by the monitors and window textures.
func Run(cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(windowW, windowH, "Roam")
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return errors.New("opening window failed")
	}
	rl.SetTargetFPS(60)

	surfaces := &Surfaces{}
	opts.Config = cfg
	opts.Topology = NewMonitorTopology(topology.Topology(topology.FromConfig(cfg.Screens)))
	opts.Surfaces = surfaces.New

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()
	defer surfaces.Unload()

	a := newApp(cfg, g, surfaces)
	slog.Info("window opened", "screens", len(g.Topology().Screens), "pets", len(g.Pets()))

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

func newApp(cfg *config.Config, g *game.Game, surfaces *Surfaces) *App {
	a := &App{
		cfg:        cfg,
		game:       g,
		surfaces:   surfaces,
		desktop:    NewDesktopRenderer(float64(cfg.Sprite.GroundOffset)),
		hud:        ui.NewHUD(),
		levels:     ui.NewLevelPanel(windowW-panelW-10, 10, panelW, maxSliderLevel(cfg)),
		inspector:  ui.NewInspector(windowW-panelW-10, 300, panelW),
		controls:   ui.NewControlsPanel(10, 100, 200),
		perf:       ui.NewPerfPanel(10, windowH-160),
		overlays:   ui.NewOverlayRegistry(),
		period:     cfg.Derived.TickPeriod.Seconds(),
		maxCatchUp: max(cfg.Tick.MaxCatchUp, 1),
	}
	a.world = g.Topology().Bounds()
	a.cam = camera.New(windowW, windowH,
		float32(a.world.Left), float32(a.world.Top), float32(a.world.Right), float32(a.world.Bottom))
	return a
}

// maxSliderLevel leaves headroom past the last evolution threshold.
func maxSliderLevel(cfg *config.Config) int {
	top := 1
	for _, t := range cfg.Evolution.Thresholds {
		top = max(top, t)
	}
	return top + 14
}

func (a *App) update() {
	a.handleResize()
	a.handleKeys()
	a.syncWorld()

	if !a.overPanel() {
		handleCamera(a.cam)
		a.input.Apply(a.game, readPointer(a.cam))
	} else if _, dragging := a.input.Dragging(); dragging {
		// Keep a drag alive when the pointer crosses a panel
		a.input.Apply(a.game, readPointer(a.cam))
	}

	a.acc += float64(rl.GetFrameTime())
	for n := 0; a.acc >= a.period; n++ {
		if n == a.maxCatchUp {
			a.acc = 0
			break
		}
		a.game.Update()
		a.acc -= a.period
	}
	a.game.RecordFrame()
}

func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	a.cam.Resize(w, h)
	a.levels.SetPosition(w-panelW-10, 10)
	a.inspector.SetPosition(int32(w)-panelW-10, 300)
	a.perf.SetPosition(10, int32(h)-160)
}

// syncWorld refits the camera when monitors are plugged or unplugged.
func (a *App) syncWorld() {
	b := a.game.Topology().Bounds()
	if b == a.world {
		return
	}
	a.world = b
	a.cam.SetWorld(float32(b.Left), float32(b.Top), float32(b.Right), float32(b.Bottom))
	a.cam.Fit()
}

func (a *App) handleKeys() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.game.TogglePause()
	case rl.IsKeyPressed(rl.KeyN):
		a.stepOnce()
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() + 1)
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		a.game.SetStepsPerUpdate(a.game.StepsPerUpdate() - 1)
	case rl.IsKeyPressed(rl.KeyR):
		a.cam.Reset()
	case rl.IsKeyPressed(rl.KeyTab):
		a.controls.Toggle()
	case rl.IsKeyPressed(rl.KeyH):
		a.levels.Toggle()
	case rl.IsKeyPressed(rl.KeyC):
		a.input.ClearSelection()
	}

	for _, desc := range a.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			a.overlays.Toggle(desc.ID)
		}
	}
}

// stepOnce advances exactly one tick, even while paused.
func (a *App) stepOnce() {
	paused := a.game.Paused()
	a.game.SetPaused(false)
	a.game.Step()
	a.game.SetPaused(paused)
}

func (a *App) overPanel() bool {
	m := rl.GetMousePosition()
	x := float32(rl.GetScreenWidth()) - panelW - 10
	h := a.levels.Height(len(a.game.Pets())) + 10
	return m.X >= x && m.Y >= 10 && m.Y <= 10+h
}

func (a *App) draw() {
	rl.BeginDrawing()
	a.desktop.DrawBackground()

	topo := a.game.Topology()
	if a.overlays.IsEnabled(ui.OverlayScreens) {
		a.desktop.DrawScreens(a.cam, topo)
	}
	if a.overlays.IsEnabled(ui.OverlayFloors) {
		a.desktop.DrawFloors(a.cam, topo)
	}

	a.surfaces.Draw(a.cam)

	pets := a.game.Pets()
	selected, hasSelected := a.input.Selected()
	drawPetOverlays(a.cam, a.overlays, pets, selected, hasSelected)

	a.hud.Draw(ui.HUDData{
		Title:   "Roam",
		Pets:    len(pets),
		Screens: len(topo.Screens),
		Modes:   a.game.ModeCounts(),
		Tick:    a.game.Tick(),
		Speed:   a.game.StepsPerUpdate(),
		FPS:     rl.GetFPS(),
		Paused:  a.game.Paused(),
	})
	a.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)
	a.controls.Draw(a.overlays)
	if a.overlays.IsEnabled(ui.OverlayPerf) {
		a.perf.Draw(a.game.PerfStats())
	}

	infos := make([]ui.PetInfo, len(pets))
	for i, p := range pets {
		infos[i] = petInfo(p)
	}
	act := a.levels.Draw(infos, a.game.Paused(), a.game.StepsPerUpdate())

	if hasSelected {
		if v, ok := a.game.Pet(selected); ok {
			a.inspector.SetPosition(int32(rl.GetScreenWidth())-panelW-10, int32(20+a.levels.Height(len(pets))))
			a.inspector.Draw(petInfo(v))
		}
	}
	rl.EndDrawing()

	a.apply(act)
}

func (a *App) apply(act ui.Actions) {
	if act.TogglePause {
		a.game.TogglePause()
	}
	if act.Step {
		a.stepOnce()
	}
	if act.Speed > 0 {
		a.game.SetStepsPerUpdate(act.Speed)
	}
	for id, level := range act.Levels {
		a.game.SetLevel(id, level)
	}
}
