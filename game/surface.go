package game

import (
	"image"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Surface is where one pet is shown: a window, a texture in a preview, or
// nothing at all. The game pushes the committed position every tick and the
// sprite whenever it changes.
type Surface interface {
	Position() (x, y float64)
	SetPosition(x, y float64)
	Size() (w, h int)
	SetSprite(img image.Image)
}

// SurfaceFactory creates the surface for a newly spawned pet. title is the
// label front ends show for it.
type SurfaceFactory func(title string, w, h int) Surface

// Title returns the label of a pet's surface: "Pet - " and the capitalised name.
func Title(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "Pet - " + name
	}
	return "Pet - " + string(unicode.ToUpper(r)) + strings.ToLower(name[n:])
}

// MemorySurface records what it was given. Headless runs and tests use it.
type MemorySurface struct {
	mu     sync.Mutex
	title  string
	x, y   float64
	w, h   int
	sprite image.Image
	swaps  int
}

// NewMemorySurface is a SurfaceFactory.
func NewMemorySurface(title string, w, h int) Surface {
	return &MemorySurface{title: title, w: w, h: h}
}

// Title returns the label the surface was created with.
func (s *MemorySurface) Title() string { return s.title }

// Position implements Surface.
func (s *MemorySurface) Position() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// SetPosition implements Surface.
func (s *MemorySurface) SetPosition(x, y float64) {
	s.mu.Lock()
	s.x, s.y = x, y
	s.mu.Unlock()
}

// Size implements Surface.
func (s *MemorySurface) Size() (int, int) { return s.w, s.h }

// SetSprite implements Surface.
func (s *MemorySurface) SetSprite(img image.Image) {
	s.mu.Lock()
	s.sprite = img
	s.swaps++
	s.mu.Unlock()
}

// Sprite returns the last sprite set.
func (s *MemorySurface) Sprite() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sprite
}

// Swaps returns how many times the sprite was set.
func (s *MemorySurface) Swaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps
}
