// Package sprite holds the pure image transforms applied to pet sprites
// and the resolution of sprite assets by pet name and evolution stage.
package sprite

import (
	"image"
	"image/color"
	"image/draw"
)

// Mirror returns a left-right flipped copy of img. Mirror(Mirror(img)) is
// pixel-identical to img.
func Mirror(img image.Image) *image.NRGBA {
	src := toNRGBA(img)
	b := src.Rect
	dst := image.NewNRGBA(b)
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(out[(w-1-x)*4:(w-x)*4], row[x*4:x*4+4])
		}
	}
	return dst
}

// Tinted is a sprite with a flat color overlaid on its opaque pixels.
// It remembers the untinted base so tinting is never cumulative.
type Tinted struct {
	*image.NRGBA
	Base image.Image
	Tint color.NRGBA
}

// Tint composites c over the opaque pixels of img, masked by img's alpha, leaving
// transparent regions untouched. Tinting an already tinted sprite re-tints its base,
// so Tint(Tint(img, c), c) equals Tint(img, c).
func Tint(img image.Image, c color.NRGBA) *Tinted {
	if t, ok := img.(*Tinted); ok {
		img = t.Base
	}
	dst := toNRGBA(img)
	if dst == img {
		dst = cloneNRGBA(dst)
	}
	draw.DrawMask(dst, dst.Rect, image.NewUniform(c), image.Point{}, img, img.Bounds().Min, draw.Over)
	return &Tinted{NRGBA: dst, Base: img, Tint: c}
}

// Equal reports whether two images have the same bounds and pixels.
func Equal(a, b image.Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	na, nb := toNRGBA(a), toNRGBA(b)
	w := na.Rect.Dx() * 4
	for y := 0; y < na.Rect.Dy(); y++ {
		ra := na.Pix[y*na.Stride : y*na.Stride+w]
		rb := nb.Pix[y*nb.Stride : y*nb.Stride+w]
		for i := range ra {
			if ra[i] != rb[i] {
				return false
			}
		}
	}
	return true
}

// toNRGBA returns img as an NRGBA anchored at the origin, converting only when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	switch v := img.(type) {
	case *image.NRGBA:
		if v.Rect.Min == (image.Point{}) {
			return v
		}
	case *Tinted:
		return toNRGBA(v.NRGBA)
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
