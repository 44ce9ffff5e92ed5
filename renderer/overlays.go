package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/camera"
	"github.com/pthm-cable/roam/components"
	"github.com/pthm-cable/roam/game"
	"github.com/pthm-cable/roam/ui"
)

var modeColors = map[components.Mode]rl.Color{
	components.ModeFalling:  rl.SkyBlue,
	components.ModeWalking:  rl.Green,
	components.ModeJumping:  rl.Orange,
	components.ModeDelayed:  rl.Gray,
	components.ModeEvolving: rl.White,
	components.ModeDragged:  rl.Red,
}

// drawPetOverlays renders every enabled per-pet overlay.
func drawPetOverlays(cam *camera.Camera, overlays *ui.OverlayRegistry, pets []game.PetView, selected uint32, hasSelected bool) {
	for _, p := range pets {
		x, y := cam.WorldToScreen(float32(p.X), float32(p.Y))
		w, h := float32(p.W)*cam.Zoom, float32(p.H)*cam.Zoom

		if overlays.IsEnabled(ui.OverlayHitboxes) {
			rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, 1, modeColors[p.Mode])
		}
		if overlays.IsEnabled(ui.OverlayVelocity) && (p.VX != 0 || p.VY != 0) {
			cx, cy := x+w/2, y+h/2
			// One tick of motion is too short to see; draw ten.
			ex := cx + float32(p.VX)*10*cam.Zoom
			ey := cy + float32(p.VY)*10*cam.Zoom
			rl.DrawLineEx(rl.Vector2{X: cx, Y: cy}, rl.Vector2{X: ex, Y: ey}, 2, rl.Yellow)
			rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 3, rl.Yellow)
		}
		if overlays.IsEnabled(ui.OverlayLabels) {
			label := fmt.Sprintf("%s L%d", p.Title, p.Level)
			lw := rl.MeasureText(label, 10)
			rl.DrawText(label, int32(x+w/2)-lw/2, int32(y)-12, 10, rl.LightGray)
		}
		if hasSelected && p.ID == selected {
			rl.DrawRectangleLinesEx(rl.Rectangle{X: x - 2, Y: y - 2, Width: w + 4, Height: h + 4}, 2, rl.Yellow)
		}
	}
}

// petInfo converts a game view for the ui panels.
func petInfo(v game.PetView) ui.PetInfo {
	return ui.PetInfo{
		ID:       v.ID,
		Title:    v.Title,
		Level:    v.Level,
		Stage:    v.Stage,
		Mode:     v.Mode.String(),
		Facing:   v.Facing,
		X:        v.X,
		Y:        v.Y,
		NextAt:   v.NextAt,
		Progress: float32(v.Pulse),
	}
}
