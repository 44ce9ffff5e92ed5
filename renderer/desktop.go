package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/camera"
	"github.com/pthm-cable/roam/topology"
)

var (
	backgroundColor = rl.Color{R: 18, G: 20, B: 26, A: 255}
	screenFill      = rl.Color{R: 34, G: 44, B: 58, A: 255}
	screenBorder    = rl.Color{R: 90, G: 110, B: 140, A: 255}
	floorColor      = rl.Color{R: 120, G: 200, B: 120, A: 200}
)

// DesktopRenderer draws the monitor layout behind the pets.
type DesktopRenderer struct {
	groundOffset float64
}

// NewDesktopRenderer creates a renderer that marks floors groundOffset above
// each screen's bottom edge.
func NewDesktopRenderer(groundOffset float64) *DesktopRenderer {
	return &DesktopRenderer{groundOffset: groundOffset}
}

// DrawBackground clears the window.
func (d *DesktopRenderer) DrawBackground() {
	rl.ClearBackground(backgroundColor)
}

// DrawScreens fills and outlines every screen, labelled with its index.
func (d *DesktopRenderer) DrawScreens(cam *camera.Camera, topo topology.Topology) {
	for i, s := range topo.Screens {
		rect := screenRect(cam, s)
		rl.DrawRectangleRec(rect, screenFill)
		rl.DrawRectangleLinesEx(rect, 2, screenBorder)
		rl.DrawText(
			fmt.Sprintf("%d: %.0fx%.0f @ %.0f,%.0f", i, s.Width(), s.Height(), s.Left, s.Top),
			int32(rect.X)+6, int32(rect.Y)+6, 12, screenBorder,
		)
	}
}

// DrawFloors marks the line each screen's pets stand on.
func (d *DesktopRenderer) DrawFloors(cam *camera.Camera, topo topology.Topology) {
	for _, s := range topo.Screens {
		y := float32(s.Bottom - d.groundOffset)
		x0, sy := cam.WorldToScreen(float32(s.Left), y)
		x1, _ := cam.WorldToScreen(float32(s.Right), y)
		rl.DrawLineEx(rl.Vector2{X: x0, Y: sy}, rl.Vector2{X: x1, Y: sy}, 2, floorColor)
	}
}

func screenRect(cam *camera.Camera, s topology.Rect) rl.Rectangle {
	x, y := cam.WorldToScreen(float32(s.Left), float32(s.Top))
	return rl.Rectangle{
		X:      x,
		Y:      y,
		Width:  float32(s.Width()) * cam.Zoom,
		Height: float32(s.Height()) * cam.Zoom,
	}
}
