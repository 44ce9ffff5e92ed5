package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func pet(data any) PetInfo {
	p, _ := data.(PetInfo)
	return p
}

// PetSections describes the inspector panel.
var PetSections = []SectionDescriptor{
	{
		Title: "State",
		Fields: []FieldDescriptor{
			{Label: "Mode", Widget: WidgetText, TextGetter: func(d any) string { return pet(d).Mode }},
			{Label: "Facing", Widget: WidgetText, TextGetter: func(d any) string {
				if pet(d).Facing < 0 {
					return "left"
				}
				return "right"
			}},
			{Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				p := pet(d)
				return fmt.Sprintf("%.0f, %.0f", p.X, p.Y)
			}},
		},
	},
	{
		Title: "Evolution",
		Fields: []FieldDescriptor{
			{Label: "Level", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(pet(d).Level) }},
			{Label: "Stage", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(pet(d).Stage) }},
			{Label: "Next at", Widget: WidgetText, Format: "%.0f",
				Getter:  func(d any) float32 { return float32(pet(d).NextAt) },
				Visible: func(d any) bool { return pet(d).NextAt > 0 },
			},
			{Label: "Pulse", Widget: WidgetBar, Color: rl.Color{R: 230, G: 230, B: 255, A: 255},
				Getter:  func(d any) float32 { return pet(d).Progress },
				Visible: func(d any) bool { return pet(d).Mode == "evolving" },
			},
		},
	},
}

// Inspector renders the panel for the selected pet.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel and returns the Y below it.
func (ins *Inspector) Draw(p PetInfo) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range PetSections {
		height += r.SectionHeight(sd, p)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	rl.DrawText(fmt.Sprintf("#%d %s", p.ID, p.Title), ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range PetSections {
		y = r.DrawSection(ins.x+padding, y, sd, p, ins.width-padding*2)
	}
	return ins.y + height
}
