// Package viewer presents framebuffers in a desktop window.
package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/taigrr/sloth/pkg/render"
	"github.com/taigrr/sloth/pkg/scene"
)

// Step advances the scene by dt seconds and renders the next frame into the
// framebuffer passed to Run. The frame must already be flipped.
type Step func(dt float64, in scene.Input) error

// Options configures the window.
type Options struct {
	Title string
	Scale int // window pixels per framebuffer pixel
	TPS   int // updates per second
}

// Run opens a window showing fb and calls step once per tick. It blocks
// until the window closes, Escape is pressed or step fails.
func Run(fb *render.Framebuffer, step Step, opts Options) error {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.TPS < 1 {
		opts.TPS = ebiten.DefaultTPS
	}

	g := &game{fb: fb, step: step, dt: 1 / float64(opts.TPS)}
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(fb.Width*opts.Scale, fb.Height*opts.Scale)
	ebiten.SetTPS(opts.TPS)
	return ebiten.RunGame(g)
}

type game struct {
	fb   *render.Framebuffer
	img  *ebiten.Image
	step Step
	dt   float64
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return g.step(g.dt, readInput(ebiten.IsKeyPressed))
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil || g.img.Bounds().Dx() != g.fb.Width || g.img.Bounds().Dy() != g.fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(g.fb.Width, g.fb.Height)
	}
	g.img.WritePixels(g.fb.Pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.fb.Width, g.fb.Height
}

// readInput maps held keys to camera intent. Arrows or WASD orbit, = and -
// zoom, E and Q move up and down.
func readInput(pressed func(ebiten.Key) bool) scene.Input {
	axis := func(neg, pos []ebiten.Key) float64 {
		var v float64
		for _, k := range neg {
			if pressed(k) {
				v--
				break
			}
		}
		for _, k := range pos {
			if pressed(k) {
				v++
				break
			}
		}
		return v
	}

	return scene.Input{
		Yaw:   axis([]ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}, []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}),
		Pitch: axis([]ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}, []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}),
		Zoom:  axis([]ebiten.Key{ebiten.KeyMinus}, []ebiten.Key{ebiten.KeyEqual}),
		Up:    axis([]ebiten.Key{ebiten.KeyQ}, []ebiten.Key{ebiten.KeyE}),
	}
}
