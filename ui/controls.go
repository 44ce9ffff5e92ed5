package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel renders the overlay toggle list.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := len(overlays.All()) + len(categories)
	panelHeight := int32(rows)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return c.y + panelHeight
}

func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "desktop":
		return "Desktop"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

// Actions is what the user asked for through the level panel this frame.
type Actions struct {
	TogglePause bool
	Step        bool
	Speed       int            // New steps per update, 0 = unchanged
	Levels      map[uint32]int // Raised levels by pet ID
}

// LevelPanel is the raygui control panel: run controls and one level slider
// per pet. Sliders only move upwards; levels never drop.
type LevelPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	maxLevel float32
	visible  bool
}

// NewLevelPanel creates the panel. maxLevel bounds the sliders.
func NewLevelPanel(x, y, width float32, maxLevel int) *LevelPanel {
	return &LevelPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		maxLevel: float32(maxLevel),
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (l *LevelPanel) SetPosition(x, y float32) {
	l.x = x
	l.y = y
}

// Toggle switches panel visibility.
func (l *LevelPanel) Toggle() bool {
	l.visible = !l.visible
	return l.visible
}

// Height returns the panel height for n pets.
func (l *LevelPanel) Height(n int) float32 {
	return 20 + 30 + 10 + float32(n)*38
}

// Draw renders the panel and reports what the user changed.
func (l *LevelPanel) Draw(pets []PetInfo, paused bool, speed int) Actions {
	var act Actions
	if !l.visible {
		return act
	}

	r := l.renderer
	pad := float32(r.Theme.Padding)
	r.DrawPanel(int32(l.x), int32(l.y), int32(l.width), int32(l.Height(len(pets))+pad))

	x := l.x + pad
	y := l.y + pad
	inner := l.width - 2*pad

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 20

	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	third := (inner - 10) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: third, Height: 24}, pauseText) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + third + 5, Y: y, Width: third, Height: 24}, "Step") {
		act.Step = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*third + 10, Y: y, Width: third, Height: 24}, fmt.Sprintf("Speed %dx", speed)) {
		act.Speed = speed%10 + 1
	}
	y += 40

	for _, p := range pets {
		label := fmt.Sprintf("%s  L%d  S%d", p.Title, p.Level, p.Stage)
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14

		v := gui.SliderBar(
			rl.Rectangle{X: x + 20, Y: y, Width: inner - 60, Height: 16},
			"1", fmt.Sprintf("%.0f", l.maxLevel),
			float32(p.Level), 1, l.maxLevel,
		)
		if lvl := int(v); lvl > p.Level {
			if act.Levels == nil {
				act.Levels = make(map[uint32]int)
			}
			act.Levels[p.ID] = lvl
		}
		y += 24
	}
	return act
}
