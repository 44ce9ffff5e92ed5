// Package components defines the ECS components that make up one pet.
package components

import (
	"image"
	"time"
)

// Mode is the behavior state of a pet. Exactly one mode is active at a time.
type Mode uint8

const (
	ModeFalling  Mode = iota // Airborne under gravity
	ModeWalking              // On the floor, walking and bobbing
	ModeJumping              // Airborne after a random jump
	ModeDelayed              // On the floor, paused until a wall-clock deadline
	ModeEvolving             // Frozen while the evolution pulse plays
	ModeDragged              // Position driven by the pointer
)

// NumModes is the number of modes; modes index [NumModes] arrays.
const NumModes = int(ModeDragged) + 1

var modeNames = [...]string{"falling", "walking", "jumping", "delayed", "evolving", "dragged"}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Airborne reports whether gravity integrates the pet in this mode.
func (m Mode) Airborne() bool {
	return m == ModeFalling || m == ModeJumping
}

// Grounded reports whether the pet stands on its floor in this mode.
func (m Mode) Grounded() bool {
	return m == ModeWalking || m == ModeDelayed
}

// Position is the top-left corner of the pet's bounding box in desktop coordinates.
type Position struct {
	X, Y float64
}

// Velocity is in whole pixels per tick.
type Velocity struct {
	X, Y int
}

// Body is the pet's fixed bounding box size.
type Body struct {
	W, H int
}

// Motion holds the behavior state machine.
type Motion struct {
	Mode      Mode
	Facing    int // -1 (left, the asset's native orientation) or +1
	WalkCycle int

	DelayUntil time.Time // Deadline for ModeDelayed

	EvolveTicks int // Pulse ticks played so far in ModeEvolving
	AirTicks    int // Ticks spent airborne since take-off

	// Last floor found from the topology, reused when no screen contains the pet.
	Floor    float64
	HasFloor bool
}

// Pet holds identity and progression.
type Pet struct {
	ID    uint32
	Name  string
	Stage int // Evolution stage, never decreases
	Level int // External progression signal, read-only to the behavior systems
}

// Drag holds the pointer override while the pet is being dragged.
type Drag struct {
	Active           bool
	AnchorX, AnchorY float64 // Pointer minus pet origin at drag start
	LastX, LastY     float64 // Previous pointer sample
	HasLast          bool
}

// Sprite holds the images for the pet's current stage.
type Sprite struct {
	Base    image.Image // Stage asset, facing left
	Flipped image.Image // Mirror of Base, built on first use
	Active  image.Image // What the surface currently shows
	Stage   int         // Stage that Base was loaded for
}
