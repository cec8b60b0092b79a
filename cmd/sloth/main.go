// sloth - software scene-graph rasterizer
// Renders OBJ and GLB scenes to PNG, the terminal or a window.
//
// Controls (term and window modes):
//
//	W/S, Up/Down     - Orbit pitch
//	A/D, Left/Right  - Orbit yaw
//	+/-              - Zoom in/out
//	Q/E              - Move down/up
//	X                - Toggle wireframe overlay (term)
//	Esc              - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/sloth/internal/config"
	"github.com/taigrr/sloth/internal/logger"
	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/render"
	"github.com/taigrr/sloth/pkg/scene"
	"github.com/taigrr/sloth/pkg/viewer"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sloth - software scene-graph rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sloth [options] [model.obj|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model the scene comes from -config or ./sloth.yaml.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls (term/window):\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  Q/E         - Move down/up\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe (term)\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	config.ParseFlags()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if path := config.ModelPath(); path != "" {
		cfg.Scene = config.ModelScene(path)
	}

	// The terminal owns stdout in term mode, so only the file sink is used.
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, cfg.Render.Mode != config.ModeTerm); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	world, err := config.Build(cfg, logger.Named("scene"))
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	bg, err := cfg.Render.BackgroundColor()
	if err != nil {
		return err
	}

	a := &app{
		cfg:       cfg,
		world:     world,
		bg:        bg,
		wireframe: cfg.Render.Wireframe,
		log:       logger.Named("render"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Render.Mode {
	case config.ModeTerm:
		return a.runTerm(ctx)
	case config.ModeWindow:
		a.resize(cfg.Render.Width, cfg.Render.Height)
		return viewer.Run(a.fb, a.frame, viewer.Options{
			Title: "sloth",
			Scale: 2,
			TPS:   cfg.Render.FPS,
		})
	default:
		return a.runPNG(ctx)
	}
}

type app struct {
	cfg       *config.Config
	world     *config.World
	bg        color.RGBA
	wireframe bool
	log       *zap.Logger

	fb   *render.Framebuffer
	rast *render.Rasterizer
}

// resize reallocates the framebuffer and matches every camera's aspect.
func (a *app) resize(width, height int) {
	a.fb = render.NewFramebuffer(width, height)
	a.rast = render.NewRasterizer(a.fb)
	a.rast.SetLogger(a.log)

	aspect := float64(width) / float64(height)
	for i := range a.world.Cameras.Len() {
		if cam, err := a.world.Cameras.Get(camera.ID(i)); err == nil {
			cam.Aspect = aspect
		}
	}
}

// frame updates behaviors, then clears, renders and flips one frame.
func (a *app) frame(dt float64, in scene.Input) error {
	w := a.world
	if err := w.Scene.Update(dt, in, w.Cameras); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	dir, err := w.LightDirection(a.cfg)
	if err != nil {
		return err
	}

	a.fb.Clear(a.bg)
	light := render.Lighting{Direction: dir}
	if err := a.rast.RenderScene(w.Scene, w.Meshes, w.Textures, w.Cameras, light); err != nil {
		return err
	}
	if a.wireframe {
		if cam, ok := w.Cameras.Active(); ok {
			if err := render.NewWireframe(cam, a.fb).DrawScene(w.Scene, w.Meshes, render.RGB(0, 255, 128)); err != nil {
				return err
			}
		}
	}
	a.fb.FlipVertically()
	return nil
}

func (a *app) runPNG(ctx context.Context) error {
	r := a.cfg.Render
	a.resize(r.Width, r.Height)

	dt := 1 / float64(r.FPS)
	for i := range r.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.frame(dt, scene.Input{}); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	if err := a.fb.SavePNG(r.Output); err != nil {
		return err
	}
	s := a.rast.Stats()
	logger.Info("image saved",
		zap.String("path", r.Output),
		zap.Int("frames", r.Frames),
		zap.Int("faces_drawn", s.FacesDrawn),
		zap.Int("pixels_written", s.PixelsWritten))
	return nil
}

func (a *app) runTerm(ctx context.Context) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	tr := render.NewTerminalRenderer(term, width, height)
	a.resize(tr.FramebufferSize())

	// Key release events are unreliable, so held keys decay instead.
	var in scene.Input
	const decay = 0.9

	targetDuration := time.Second / time.Duration(a.cfg.Render.FPS)
	ticker := time.NewTicker(targetDuration)
	defer ticker.Stop()
	lastFrame := time.Now()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				tr = render.NewTerminalRenderer(term, width, height)
				a.resize(tr.FramebufferSize())

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					return nil
				case ev.MatchString("w", "up"):
					in.Pitch = 1
				case ev.MatchString("s", "down"):
					in.Pitch = -1
				case ev.MatchString("a", "left"):
					in.Yaw = -1
				case ev.MatchString("d", "right"):
					in.Yaw = 1
				case ev.MatchString("+", "="):
					in.Zoom = 1
				case ev.MatchString("-", "_"):
					in.Zoom = -1
				case ev.MatchString("e"):
					in.Up = 1
				case ev.MatchString("q"):
					in.Up = -1
				case ev.MatchString("x"):
					a.wireframe = !a.wireframe
				}
			}

		case now := <-ticker.C:
			dt := min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now

			if err := a.frame(dt, in); err != nil {
				return err
			}
			in = scene.Input{
				Yaw:   in.Yaw * decay,
				Pitch: in.Pitch * decay,
				Zoom:  in.Zoom * decay,
				Up:    in.Up * decay,
			}

			tr.Render(a.fb)
			if err := tr.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
	}
}
