// Package renderer draws the pet preview window with raylib: one texture per
// pet surface, the monitor layout, overlays and mouse drag input.
package renderer

import (
	"image"
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/roam/camera"
	"github.com/pthm-cable/roam/game"
)

// TextureSurface shows one pet as a texture in the preview. Sprites arrive as
// Go images and are uploaded lazily on the render thread.
type TextureSurface struct {
	mu      sync.Mutex
	title   string
	x, y    float64
	w, h    int
	pending image.Image
	dirty   bool

	tex    rl.Texture2D
	loaded bool
}

// Position implements game.Surface.
func (s *TextureSurface) Position() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// SetPosition implements game.Surface.
func (s *TextureSurface) SetPosition(x, y float64) {
	s.mu.Lock()
	s.x, s.y = x, y
	s.mu.Unlock()
}

// Size implements game.Surface.
func (s *TextureSurface) Size() (int, int) { return s.w, s.h }

// SetSprite implements game.Surface.
func (s *TextureSurface) SetSprite(img image.Image) {
	s.mu.Lock()
	s.pending = img
	s.dirty = true
	s.mu.Unlock()
}

// Title returns the surface label.
func (s *TextureSurface) Title() string { return s.title }

// upload replaces the texture with the pending sprite. Must run on the
// thread that owns the GL context.
func (s *TextureSurface) upload() {
	s.mu.Lock()
	img, dirty := s.pending, s.dirty
	s.dirty = false
	s.mu.Unlock()

	if !dirty || img == nil {
		return
	}
	if s.loaded {
		rl.UnloadTexture(s.tex)
	}
	rimg := rl.NewImageFromImage(img)
	s.tex = rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	s.loaded = true
}

// Draw renders the sprite scaled into the pet's bounding box.
func (s *TextureSurface) Draw(cam *camera.Camera) {
	s.upload()
	if !s.loaded {
		return
	}
	x, y := s.Position()
	if !cam.IsVisible(float32(x), float32(y), float32(s.w), float32(s.h)) {
		return
	}

	sx, sy := cam.WorldToScreen(float32(x), float32(y))
	src := rl.Rectangle{Width: float32(s.tex.Width), Height: float32(s.tex.Height)}
	dst := rl.Rectangle{X: sx, Y: sy, Width: float32(s.w) * cam.Zoom, Height: float32(s.h) * cam.Zoom}
	rl.DrawTexturePro(s.tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Unload frees the texture.
func (s *TextureSurface) Unload() {
	if s.loaded {
		rl.UnloadTexture(s.tex)
		s.loaded = false
	}
}

// Surfaces creates and owns the texture surfaces of a preview window.
type Surfaces struct {
	all []*TextureSurface
}

// New is a game.SurfaceFactory.
func (ss *Surfaces) New(title string, w, h int) game.Surface {
	s := &TextureSurface{title: title, w: w, h: h}
	ss.all = append(ss.all, s)
	return s
}

// Draw renders every surface in creation order, so later pets are on top.
func (ss *Surfaces) Draw(cam *camera.Camera) {
	for _, s := range ss.all {
		s.Draw(cam)
	}
}

// Unload frees every texture.
func (ss *Surfaces) Unload() {
	for _, s := range ss.all {
		s.Unload()
	}
}
