package sprite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"
	"testing/fstest"
)

// randomSprite builds a sprite with a transparent border and random opaque body.
func randomSprite(rng *rand.Rand, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 2; y < h-2; y++ {
		for x := 2; x < w-2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: uint8(rng.Intn(256)),
			})
		}
	}
	return img
}

func TestMirrorTwiceRestoresOriginal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		img := randomSprite(rng, 5+rng.Intn(40), 5+rng.Intn(40))
		twice := Mirror(Mirror(img))
		if !bytes.Equal(twice.Pix, img.Pix) {
			t.Fatalf("trial %d: mirror twice changed pixels", i)
		}
	}
}

func TestMirrorFlipsColumns(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{B: 3, A: 255})

	m := Mirror(img)
	if got := m.NRGBAAt(0, 0); got.B != 3 {
		t.Errorf("expected right pixel on the left, got %+v", got)
	}
	if got := m.NRGBAAt(2, 0); got.R != 1 {
		t.Errorf("expected left pixel on the right, got %+v", got)
	}
}

func TestMirrorOffsetBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	img := randomSprite(rng, 16, 16)
	sub := img.SubImage(image.Rect(4, 4, 12, 12))

	m := Mirror(sub)
	if m.Rect.Min != (image.Point{}) || m.Rect.Dx() != 8 {
		t.Fatalf("expected 8x8 origin-anchored result, got %v", m.Rect)
	}
	if !Equal(Mirror(m), sub) {
		t.Error("mirror twice of a sub-image should match the sub-image")
	}
}

func TestTintNonCumulative(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 200}

	for i := 0; i < 10; i++ {
		img := randomSprite(rng, 24, 24)
		once := Tint(img, white)
		twice := Tint(once, white)
		if !Equal(once, twice) {
			t.Fatalf("trial %d: tinting twice differs from once", i)
		}
	}
}

func TestTintLeavesTransparentPixels(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	img := randomSprite(rng, 10, 10)
	img.SetNRGBA(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	tinted := Tint(img, color.NRGBA{R: 255, G: 255, B: 255, A: 200})

	if got := tinted.NRGBAAt(0, 0); got != (color.NRGBA{}) {
		t.Errorf("transparent border changed to %+v", got)
	}
	got := tinted.NRGBAAt(5, 5)
	if got.A != 255 {
		t.Errorf("opaque pixel should stay opaque, got alpha %d", got.A)
	}
	if got.R <= 10 || got.G <= 20 || got.B <= 30 {
		t.Errorf("opaque pixel should be whitened, got %+v", got)
	}
	// Base must be untouched
	if img.NRGBAAt(5, 5).R != 10 {
		t.Error("tint modified the source image")
	}
}

func TestDirResolver(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Placeholder("bulbasaur", 0, 32, 32)); err != nil {
		t.Fatal(err)
	}
	fsys := fstest.MapFS{
		"bulbasaur_0.png": {Data: buf.Bytes()},
		"broken_0.png":    {Data: []byte("not a png")},
	}
	r := NewFSResolver(fsys)

	img, err := r.Resolve("bulbasaur", 0)
	if err != nil {
		t.Fatalf("resolving stage 0: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("expected 32px sprite, got %v", img.Bounds())
	}

	if _, err := r.Resolve("bulbasaur", 1); !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
	if _, err := r.Resolve("broken", 0); err == nil || errors.Is(err, ErrAssetNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
	if _, err := r.Resolve("bulbasaur", -1); err == nil {
		t.Error("expected error for negative stage")
	}
}

type countingResolver struct {
	calls int
	fail  bool
}

func (c *countingResolver) Resolve(name string, stage int) (image.Image, error) {
	c.calls++
	if c.fail {
		return nil, ErrAssetNotFound
	}
	return Placeholder(name, stage, 8, 8), nil
}

func TestCache(t *testing.T) {
	inner := &countingResolver{}
	c := NewCache(inner)

	a, _ := c.Resolve("squirtle", 0)
	b, _ := c.Resolve("squirtle", 0)
	if a != b || inner.calls != 1 {
		t.Errorf("expected one underlying call and identical handles, got %d calls", inner.calls)
	}

	inner.fail = true
	c.Resolve("squirtle", 1)
	c.Resolve("squirtle", 1)
	if inner.calls != 3 {
		t.Errorf("failures should not be cached, got %d calls", inner.calls)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	if !Equal(Placeholder("charmander", 1, 64, 64), Placeholder("charmander", 1, 64, 64)) {
		t.Error("placeholder should be deterministic")
	}
	if Equal(Placeholder("charmander", 0, 64, 64), Placeholder("squirtle", 0, 64, 64)) {
		t.Error("different names should produce different placeholders")
	}
}
