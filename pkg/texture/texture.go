// Package texture holds decoded RGBA images and samples them by UV.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	ErrSizeMismatch      = errors.New("pixel data does not match texture size")
	ErrOutOfBounds       = errors.New("texel out of bounds")
	ErrUnsupportedFormat = errors.New("unsupported texture format")
)

// Texture is an immutable RGBA image. Row 0 of Pix is the top row of the
// source image.
type Texture struct {
	Width  int
	Height int
	Pix    []uint8 // len == Width*Height*4
}

// New wraps pix as a texture. pix is not copied.
func New(width, height int, pix []uint8) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture %dx%d: %w", width, height, ErrSizeMismatch)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("texture %dx%d with %d bytes: %w", width, height, len(pix), ErrSizeMismatch)
	}
	return &Texture{Width: width, Height: height, Pix: pix}, nil
}

// FromImage creates a texture from an image.Image.
func FromImage(img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pix := make([]uint8, width*height*4)

	for y := range height {
		for x := range width {
			// RGBA returns 16-bit values, scale to 8-bit
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := (y*width + x) * 4
			pix[i] = uint8(r >> 8)
			pix[i+1] = uint8(g >> 8)
			pix[i+2] = uint8(b >> 8)
			pix[i+3] = uint8(a >> 8)
		}
	}

	return New(width, height, pix)
}

// NewChecker creates a procedural checkerboard texture.
func NewChecker(width, height, checkSize int, c1, c2 color.RGBA) *Texture {
	pix := make([]uint8, width*height*4)
	for y := range height {
		for x := range width {
			c := c2
			if (x/checkSize+y/checkSize)%2 == 0 {
				c = c1
			}
			i := (y*width + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return &Texture{Width: width, Height: height, Pix: pix}
}

// NewSolid creates a 1x1 texture of a single color.
func NewSolid(c color.RGBA) *Texture {
	return &Texture{Width: 1, Height: 1, Pix: []uint8{c.R, c.G, c.B, c.A}}
}

// At returns the texel at (x, y).
func (t *Texture) At(x, y int) (color.RGBA, error) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}, fmt.Errorf("texel (%d,%d) of %dx%d: %w", x, y, t.Width, t.Height, ErrOutOfBounds)
	}
	return t.texel(x, y), nil
}

func (t *Texture) texel(x, y int) color.RGBA {
	i := (y*t.Width + x) * 4
	return color.RGBA{R: t.Pix[i], G: t.Pix[i+1], B: t.Pix[i+2], A: t.Pix[i+3]}
}

// Sample returns the nearest texel for (u, v). Both coordinates are clamped
// to [0, 1] first, so any finite input is safe. NaN is treated as 0.
func (t *Texture) Sample(u, v float64) color.RGBA {
	x := int(clamp01(u) * float64(t.Width))
	y := int(clamp01(v) * float64(t.Height))

	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}

	return t.texel(x, y)
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

// ScaleColor multiplies every channel, alpha included, by intensity.
// Each product is truncated and saturates to [0, 255].
func ScaleColor(c color.RGBA, intensity float64) color.RGBA {
	return color.RGBA{
		R: scaleChannel(c.R, intensity),
		G: scaleChannel(c.G, intensity),
		B: scaleChannel(c.B, intensity),
		A: scaleChannel(c.A, intensity),
	}
}

func scaleChannel(ch uint8, k float64) uint8 {
	f := float64(ch) * k
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f)
}
