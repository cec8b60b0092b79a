package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagOut       = flag.String("out", "", "Output PNG path (png mode)")
	flagWidth     = flag.Int("width", 0, "Framebuffer width")
	flagHeight    = flag.Int("height", 0, "Framebuffer height")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMode      = flag.String("mode", "", "Presentation: png, term or window")
	flagFrames    = flag.Int("frames", 0, "Frames to render before saving (png mode)")
	flagFPS       = flag.Int("fps", 0, "Target frames per second")
	flagBG        = flag.String("bg", "", "Background color as r,g,b")
	flagWireframe = flag.Bool("wireframe", false, "Draw a wireframe overlay")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// ModelPath returns the first positional argument, if any. A model given on
// the command line replaces the configured scene.
func ModelPath() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Render.Output = *flagOut
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
	}
	if *flagMode != "" {
		cfg.Render.Mode = *flagMode
	}
	if *flagFrames > 0 {
		cfg.Render.Frames = *flagFrames
	}
	if *flagFPS > 0 {
		cfg.Render.FPS = *flagFPS
	}
	if *flagBG != "" {
		cfg.Render.Background = *flagBG
	}
	if *flagWireframe {
		cfg.Render.Wireframe = true
	}
}
