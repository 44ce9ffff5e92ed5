package sprite

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrAssetNotFound is returned when no sprite exists for a name and stage.
var ErrAssetNotFound = errors.New("sprite asset not found")

// Resolver resolves a pet name and evolution stage to a sprite image.
// Implementations must be safe for concurrent use.
type Resolver interface {
	Resolve(name string, stage int) (image.Image, error)
}

// AssetName returns the base file name of a sprite: {name}_{stage}.png.
func AssetName(name string, stage int) string {
	return fmt.Sprintf("%s_%d.png", name, stage)
}

// DirResolver loads PNG sprites from a directory.
type DirResolver struct {
	fsys fs.FS
}

// NewDirResolver returns a resolver reading from dir on disk.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{fsys: os.DirFS(dir)}
}

// NewFSResolver returns a resolver reading from an arbitrary filesystem.
func NewFSResolver(fsys fs.FS) *DirResolver {
	return &DirResolver{fsys: fsys}
}

// Resolve implements Resolver.
func (r *DirResolver) Resolve(name string, stage int) (image.Image, error) {
	if stage < 0 {
		return nil, fmt.Errorf("resolving %s stage %d: negative stage", name, stage)
	}
	file := AssetName(name, stage)
	f, err := r.fsys.Open(filepath.ToSlash(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("resolving %s: %w", file, ErrAssetNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	return img, nil
}

// Cache memoizes successful resolutions of an underlying resolver.
// Failures are not cached so a sprite added later is picked up on the next attempt.
type Cache struct {
	next Resolver

	mu     sync.Mutex
	images map[cacheKey]image.Image
}

type cacheKey struct {
	name  string
	stage int
}

// NewCache wraps a resolver with a memoizing cache.
func NewCache(next Resolver) *Cache {
	return &Cache{next: next, images: make(map[cacheKey]image.Image)}
}

// Resolve implements Resolver.
func (c *Cache) Resolve(name string, stage int) (image.Image, error) {
	key := cacheKey{name, stage}
	c.mu.Lock()
	img, ok := c.images[key]
	c.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := c.next.Resolve(name, stage)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()
	return img, nil
}

// Placeholder draws a stand-in sprite used when even the first stage of a pet cannot be
// loaded. The body color is derived from the name; a darker notch marks the left-facing head.
func Placeholder(name string, stage, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	hash := fnv.New32a()
	hash.Write([]byte(name))
	sum := hash.Sum32()
	body := color.NRGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}

	// Later stages get a bigger body
	inset := max(w/4-stage*w/16, w/16)
	draw.Draw(img, image.Rect(inset, inset, w-inset, h-w/16), image.NewUniform(body), image.Point{}, draw.Src)

	head := color.NRGBA{R: body.R / 2, G: body.G / 2, B: body.B / 2, A: 255}
	draw.Draw(img, image.Rect(inset, inset, inset+w/8, inset+h/8), image.NewUniform(head), image.Point{}, draw.Src)
	return img
}
