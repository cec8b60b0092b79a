package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalScreen is a cell screen that can push its contents to the
// terminal, such as *uv.Terminal.
type TerminalScreen interface {
	uv.Screen
	Display() error
}

// TerminalRenderer presents framebuffers on a terminal using half blocks,
// two framebuffer rows per cell row.
type TerminalRenderer struct {
	scr    TerminalScreen
	width  int
	height int
}

// NewTerminalRenderer creates a renderer for a terminal of width x height cells.
func NewTerminalRenderer(scr TerminalScreen, width, height int) *TerminalRenderer {
	return &TerminalRenderer{scr: scr, width: width, height: height}
}

// FramebufferSize returns the framebuffer size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render draws fb into the screen's cells. fb must already be flipped.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.scr, uv.Rect(0, 0, t.width, t.height))
}

// Flush writes pending cell changes to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.scr.Display()
}

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. The framebuffer must already be flipped so row 0 is the top, and
// its height should be 2x the terminal height.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	// Each terminal row represents 2 framebuffer rows
	// We use ▀ (upper half block) with fg=top color and bg=bottom color

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < fb.Width; col++ {
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(col, topY)),
					Bg: rgbaToColor(fb.GetPixel(col, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
	ColorSky   = color.RGBA{135, 206, 235, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
