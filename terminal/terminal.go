// Package terminal is a tcell front end: the desktop is scaled into the
// terminal grid, pets are drawn as lettered boxes and can be dragged with
// the mouse.
package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/game"
	"github.com/pthm-cable/roam/topology"
)

// statusRows are reserved at the bottom for the status line and key legend.
const statusRows = 2

var (
	screenStyle = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	floorStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	pausedStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	stageColors = []tcell.Color{tcell.ColorLightGreen, tcell.ColorOrange, tcell.ColorRed}
)

// View draws a game onto a tcell screen and routes its mouse and key events.
type View struct {
	screen  tcell.Screen
	game    *game.Game
	tracker game.PointerTracker
	down    bool

	groundOffset float64

	// Desktop rectangle mapped onto the grid
	bounds topology.Rect
	cols   int
	rows   int
}

// NewView creates a view. The screen must already be initialised.
func NewView(screen tcell.Screen, g *game.Game) *View {
	v := &View{
		screen:       screen,
		game:         g,
		groundOffset: float64(g.Config().Sprite.GroundOffset),
	}
	v.layout()
	return v
}

// layout recomputes the desktop-to-cell mapping.
func (v *View) layout() {
	v.cols, v.rows = v.screen.Size()
	v.rows = max(v.rows-statusRows, 1)
	v.cols = max(v.cols, 1)
	v.bounds = v.game.Topology().Bounds()
	if v.bounds.Empty() {
		v.bounds = topology.Rect{Right: 1, Bottom: 1}
	}
}

// CellToDesktop returns the desktop point at the center of a cell.
func (v *View) CellToDesktop(cx, cy int) (float64, float64) {
	x := v.bounds.Left + (float64(cx)+0.5)*v.bounds.Width()/float64(v.cols)
	y := v.bounds.Top + (float64(cy)+0.5)*v.bounds.Height()/float64(v.rows)
	return x, y
}

// DesktopToCell returns the cell containing a desktop point.
func (v *View) DesktopToCell(x, y float64) (int, int) {
	cx := int((x - v.bounds.Left) * float64(v.cols) / v.bounds.Width())
	cy := int((y - v.bounds.Top) * float64(v.rows) / v.bounds.Height())
	return cx, cy
}

// Draw renders the screens, floors, pets and status line.
func (v *View) Draw() {
	if v.game.Topology().Bounds() != v.bounds {
		v.layout()
	}
	v.screen.Clear()

	topo := v.game.Topology()
	for _, s := range topo.Screens {
		v.drawScreen(s)
	}
	for _, p := range v.game.Pets() {
		v.drawPet(p)
	}
	v.drawStatus()
	v.screen.Show()
}

func (v *View) drawScreen(s topology.Rect) {
	x0, y0 := v.DesktopToCell(s.Left, s.Top)
	x1, y1 := v.DesktopToCell(s.Right, s.Bottom)
	x1, y1 = min(x1, v.cols)-1, min(y1, v.rows)-1

	for x := x0; x <= x1; x++ {
		v.put(x, y0, '─', screenStyle)
		v.put(x, y1, '─', screenStyle)
	}
	for y := y0; y <= y1; y++ {
		v.put(x0, y, '│', screenStyle)
		v.put(x1, y, '│', screenStyle)
	}
	v.put(x0, y0, '┌', screenStyle)
	v.put(x1, y0, '┐', screenStyle)
	v.put(x0, y1, '└', screenStyle)
	v.put(x1, y1, '┘', screenStyle)

	_, fy := v.DesktopToCell(s.Left, s.Bottom-v.groundOffset)
	for x := x0 + 1; x < x1; x++ {
		v.put(x, fy, '▁', floorStyle)
	}
}

func (v *View) drawPet(p game.PetView) {
	x0, y0 := v.DesktopToCell(p.X, p.Y)
	x1, y1 := v.DesktopToCell(p.X+float64(p.W)-1, p.Y+float64(p.H)-1)

	style := tcell.StyleDefault.Foreground(stageColors[min(p.Stage, len(stageColors)-1)])
	switch p.Mode {
	case components.ModeEvolving:
		style = style.Reverse(true)
	case components.ModeDragged:
		style = style.Bold(true).Underline(true)
	}

	fill := '▒'
	if p.Facing > 0 {
		fill = '▓'
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			v.put(x, y, fill, style)
		}
	}
	letter := '?'
	if p.Name != "" {
		letter = unicode.ToUpper([]rune(p.Name)[0])
	}
	v.put((x0+x1)/2, (y0+y1)/2, letter, style)
}

func (v *View) drawStatus() {
	modes := v.game.ModeCounts()
	status := fmt.Sprintf("tick %d  speed %dx  pets %d  walking %d  airborne %d  evolving %d",
		v.game.Tick(), v.game.StepsPerUpdate(), modes.Total(),
		modes.Walking+modes.Delayed, modes.Falling+modes.Jumping, modes.Evolving)
	v.text(0, v.rows, status, statusStyle)
	if v.game.Paused() {
		v.text(len(status)+2, v.rows, "PAUSED", pausedStyle)
	}
	v.text(0, v.rows+1, "drag: mouse  space: pause  n: step  +/-: speed  tab: dump pets  q: quit", statusStyle)
}

func (v *View) put(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= v.cols || y >= v.rows+statusRows {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}

func (v *View) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.put(x, y, r, style)
		x++
	}
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)

	case *tcell.EventMouse:
		cx, cy := ev.Position()
		x, y := v.CellToDesktop(cx, cy)
		held := ev.Buttons()&tcell.Button1 != 0
		v.tracker.Apply(v.game, game.Pointer{
			X:        x,
			Y:        y,
			Down:     held,
			Pressed:  held && !v.down,
			Released: !held && v.down,
		})
		v.down = held

	case *tcell.EventResize:
		v.layout()
		v.screen.Sync()
	}
	return true
}

func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		v.game.LogPets()
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case ' ':
		v.game.TogglePause()
	case 'n':
		paused := v.game.Paused()
		v.game.SetPaused(false)
		v.game.Step()
		v.game.SetPaused(paused)
	case '+', '=':
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
	case '-':
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
	}
	return true
}

// Run drives the game on the terminal until the user quits, ctx is cancelled
// or maxTicks is reached (0 = unlimited).
func Run(ctx context.Context, screen tcell.Screen, g *game.Game, period time.Duration, maxTicks int) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initialising terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	v := NewView(screen, g)

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.HandleEvent(ev) {
				slog.Info("terminal closed by user", "tick", g.Tick())
				return nil
			}
			v.Draw()
		case <-ticker.C:
			g.Update()
			v.Draw()
			if maxTicks > 0 && int(g.Tick()) >= maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return nil
			}
		}
	}
}
