package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title   string
	Pets    int
	Screens int
	Modes   telemetry.ModeCounts
	Tick    int32
	Speed   int
	FPS     int32
	Paused  bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Pets: %d | Screens: %d | Walking: %d | Airborne: %d | Evolving: %d",
			data.Pets, data.Screens, data.Modes.Walking+data.Modes.Delayed,
			data.Modes.Falling+data.Modes.Jumping, data.Modes.Evolving),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timings.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgTick.Round(time.Microsecond),
		stats.MaxTick.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for i, ph := range stats.Phases {
		color := rl.LightGray
		if ph.Pct > 50 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", telemetry.Phase(i), ph.Avg.Round(time.Microsecond), ph.Pct),
			x, y, 12, color,
		)
		y += 14
	}

	if sl := stats.Slowest; sl.Duration > 0 {
		rl.DrawText(fmt.Sprintf("Slowest: #%d %s %s", sl.Pet, sl.Mode, sl.Duration), x, y, 12, rl.LightGray)
	}
}
