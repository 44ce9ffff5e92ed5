// Package ui provides a descriptor-driven UI for the pet preview. Panels are
// described by metadata so new pet fields only need a descriptor entry.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText    WidgetType = iota // Plain text with format string
	WidgetBar                       // Progress bar [0, 1]
	WidgetSection                   // Section header
	WidgetSpacer                    // Vertical spacing
)

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	Label      string             // Display label
	Widget     WidgetType         // How to render
	Format     string             // Printf format for numeric text (e.g., "%.0f")
	Visible    func(any) bool     // Optional visibility check (nil = always visible)
	Getter     func(any) float32  // Value extractor (numeric fields, bars)
	TextGetter func(any) string   // Value extractor (text fields)
	Color      rl.Color           // Optional bar color override
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 230},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     70,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// PetInfo is what the panels know about one pet.
type PetInfo struct {
	ID       uint32
	Title    string
	Level    int
	Stage    int
	Mode     string
	Facing   int
	X, Y     float64
	NextAt   int     // level needed for the next stage, 0 at the final stage
	Progress float32 // evolution pulse progress in [0, 1] while evolving
}
