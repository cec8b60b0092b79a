// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/taigrr/sloth/pkg/math3d"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Presentation modes.
const (
	ModePNG    = "png"
	ModeTerm   = "term"
	ModeWindow = "window"
)

// Config holds all renderer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Light   LightConfig   `yaml:"light"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds framebuffer and presentation settings.
type RenderConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Mode       string `yaml:"mode"`
	Frames     int    `yaml:"frames"`
	FPS        int    `yaml:"fps"`
	Output     string `yaml:"output"`
	Background string `yaml:"background"` // "r,g,b"
	Wireframe  bool   `yaml:"wireframe"`
}

// CameraConfig places a camera. FOV is in degrees.
type CameraConfig struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// LightConfig is the fallback light used when the scene has no light node.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      320,
			Height:     240,
			Mode:       ModePNG,
			Frames:     1,
			FPS:        60,
			Output:     "out.png",
			Background: "30,30,40",
		},
		Camera: CameraConfig{
			Position: [3]float64{0, 0, 5},
			FOV:      60,
			Near:     0.1,
			Far:      100,
		},
		Light: LightConfig{
			Direction: [3]float64{0, 0, -1},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks ranges that would otherwise surface as odd rendering.
func (c *Config) Validate() error {
	r := c.Render
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", r.Width, r.Height, ErrInvalid)
	}
	if !slices.Contains([]string{ModePNG, ModeTerm, ModeWindow}, r.Mode) {
		return fmt.Errorf("mode %q: %w", r.Mode, ErrInvalid)
	}
	if r.Frames < 1 {
		return fmt.Errorf("frames %d: %w", r.Frames, ErrInvalid)
	}
	if r.FPS < 1 {
		return fmt.Errorf("fps %d: %w", r.FPS, ErrInvalid)
	}
	if _, err := r.BackgroundColor(); err != nil {
		return err
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("clip planes %v..%v: %w", c.Camera.Near, c.Camera.Far, ErrInvalid)
	}
	return nil
}

// BackgroundColor parses Background as "r,g,b".
func (r RenderConfig) BackgroundColor() (color.RGBA, error) {
	var cr, cg, cb int
	if n, err := fmt.Sscanf(r.Background, "%d,%d,%d", &cr, &cg, &cb); err != nil || n != 3 {
		return color.RGBA{}, fmt.Errorf("background %q: %w", r.Background, ErrInvalid)
	}
	for _, v := range []int{cr, cg, cb} {
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("background %q: %w", r.Background, ErrInvalid)
		}
	}
	return color.RGBA{uint8(cr), uint8(cg), uint8(cb), 255}, nil
}

// FOVRadians returns the vertical field of view in radians.
func (c CameraConfig) FOVRadians() float64 {
	return c.FOV * math.Pi / 180
}

// Vec returns the light direction as a vector.
func (l LightConfig) Vec() math3d.Vec3 {
	return vec3(l.Direction)
}

func vec3(a [3]float64) math3d.Vec3 {
	return math3d.V3(a[0], a[1], a[2])
}
