// Package render rasterizes textured meshes from a scene graph into an RGBA
// framebuffer.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

var (
	ErrOutOfBounds = errors.New("pixel out of bounds")
	ErrBufferSize  = errors.New("destination buffer size mismatch")
)

// Framebuffer is a row-major RGBA byte buffer. Row 0 is the bottom of the
// image until FlipVertically is called.
type Framebuffer struct {
	Width  int
	Height int
	Pix    []uint8 // len == Width*Height*4
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	if len(fb.Pix) == 0 {
		return
	}
	fb.Pix[0], fb.Pix[1], fb.Pix[2], fb.Pix[3] = c.R, c.G, c.B, c.A
	// Use copy-doubling for faster clearing
	for i := 4; i < len(fb.Pix); i *= 2 {
		copy(fb.Pix[i:], fb.Pix[:i])
	}
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel sets a pixel at (x, y) to the given color.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) error {
	if !fb.inBounds(x, y) {
		return fmt.Errorf("set (%d,%d) on %dx%d: %w", x, y, fb.Width, fb.Height, ErrOutOfBounds)
	}
	i := (y*fb.Width + x) * 4
	fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3] = c.R, c.G, c.B, c.A
	return nil
}

// Pixel returns the color at (x, y).
func (fb *Framebuffer) Pixel(x, y int) (color.RGBA, error) {
	if !fb.inBounds(x, y) {
		return color.RGBA{}, fmt.Errorf("get (%d,%d) on %dx%d: %w", x, y, fb.Width, fb.Height, ErrOutOfBounds)
	}
	return fb.GetPixel(x, y), nil
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !fb.inBounds(x, y) {
		return color.RGBA{}
	}
	i := (y*fb.Width + x) * 4
	return color.RGBA{R: fb.Pix[i], G: fb.Pix[i+1], B: fb.Pix[i+2], A: fb.Pix[i+3]}
}

// FlipVertically swaps rows in place so row 0 becomes the top of the image.
func (fb *Framebuffer) FlipVertically() {
	stride := fb.Width * 4
	tmp := make([]uint8, stride)
	for top, bot := 0, fb.Height-1; top < bot; top, bot = top+1, bot-1 {
		a := fb.Pix[top*stride : (top+1)*stride]
		b := fb.Pix[bot*stride : (bot+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// WriteToBuffer copies the pixels into dst, which must be exactly
// Width*Height*4 bytes.
func (fb *Framebuffer) WriteToBuffer(dst []byte) error {
	if len(dst) != len(fb.Pix) {
		return fmt.Errorf("need %d bytes, got %d: %w", len(fb.Pix), len(dst), ErrBufferSize)
	}
	copy(dst, fb.Pix)
	return nil
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's
// algorithm. Points outside the framebuffer are skipped.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		_ = fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Pix)
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
