// Package telemetry provides per-window behavior statistics, per-pet lifetime
// tracking, performance timing and CSV output.
package telemetry

import "github.com/pthm-cable/roam/components"

// EvolutionRecord is one completed evolution, written to evolutions.csv.
type EvolutionRecord struct {
	Tick          int32   `csv:"tick"`
	PetID         uint32  `csv:"pet_id"`
	Name          string  `csv:"name"`
	FromStage     int     `csv:"from_stage"`
	ToStage       int     `csv:"to_stage"`
	Level         int     `csv:"level"`
	AssetFallback bool    `csv:"asset_fallback"`
	X             float64 `csv:"x"`
	Y             float64 `csv:"y"`
}

// NewEvolutionRecord builds the record for a pet that just reached its current stage.
func NewEvolutionRecord(tick int32, pet components.Pet, pos components.Position, fallback bool) EvolutionRecord {
	return EvolutionRecord{
		Tick:          tick,
		PetID:         pet.ID,
		Name:          pet.Name,
		FromStage:     pet.Stage - 1,
		ToStage:       pet.Stage,
		Level:         pet.Level,
		AssetFallback: fallback,
		X:             pos.X,
		Y:             pos.Y,
	}
}

// ModeCounts is a census of pets by behavior mode.
type ModeCounts struct {
	Falling  int
	Walking  int
	Jumping  int
	Delayed  int
	Evolving int
	Dragged  int
}

// Add counts one pet in mode m.
func (c *ModeCounts) Add(m components.Mode) {
	switch m {
	case components.ModeFalling:
		c.Falling++
	case components.ModeWalking:
		c.Walking++
	case components.ModeJumping:
		c.Jumping++
	case components.ModeDelayed:
		c.Delayed++
	case components.ModeEvolving:
		c.Evolving++
	case components.ModeDragged:
		c.Dragged++
	}
}

// Total returns the number of pets counted.
func (c ModeCounts) Total() int {
	return c.Falling + c.Walking + c.Jumping + c.Delayed + c.Evolving + c.Dragged
}
