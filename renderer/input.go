package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/camera"
	"github.com/pthm-cable/roam/game"
)

// readPointer samples the left mouse button through the camera.
func readPointer(cam *camera.Camera) game.Pointer {
	m := rl.GetMousePosition()
	wx, wy := cam.ScreenToWorld(m.X, m.Y)
	return game.Pointer{
		X:        float64(wx),
		Y:        float64(wy),
		Down:     rl.IsMouseButtonDown(rl.MouseLeftButton),
		Pressed:  rl.IsMouseButtonPressed(rl.MouseLeftButton),
		Released: rl.IsMouseButtonReleased(rl.MouseLeftButton),
	}
}

// handleCamera pans with the right button and zooms with the wheel.
func handleCamera(cam *camera.Camera) {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		cam.ZoomBy(factor)
	}
}
