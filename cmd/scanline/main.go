// Command scanline renders OBJ and GLTF/GLB models with the software
// rasterizer, either interactively in the terminal or to PNG files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/taigrr/scanline/pkg/render"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("scanline", flag.ExitOnError)
	def := Default()
	fs.String("config", "", "Scene file (.yaml or .toml)")
	fs.String("texture", "", "Texture image (PNG/JPG/BMP/TIFF/WebP), overrides model textures")
	fs.String("shader", def.Shader, "Lighting model: "+shaderNames())
	fs.String("material", "", "Material preset: "+strings.Join(render.PresetNames(), ", "))
	fs.Int("fps", def.FPS, "Target FPS")
	fs.String("bg", def.Background, "Background color (R,G,B)")
	fs.String("o", "", "Write a PNG snapshot instead of opening the viewer")
	fs.Int("frames", def.Frames, "Turntable frame count for -o")
	fs.String("size", def.Size, "Snapshot size (WxH)")
	fs.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "scanline - software rasterizer and terminal model viewer\n\n")
		fmt.Fprintf(out, "Usage: scanline [options] [model.obj|model.glb|cube|plane]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nControls:\n")
		fmt.Fprintf(out, "  Mouse drag  - Rotate model\n")
		fmt.Fprintf(out, "  Scroll, +/- - Zoom in/out\n")
		fmt.Fprintf(out, "  W/S/A/D     - Pitch and yaw\n")
		fmt.Fprintf(out, "  Q/E         - Roll left/right\n")
		fmt.Fprintf(out, "  Space       - Random spin\n")
		fmt.Fprintf(out, "  R           - Reset view\n")
		fmt.Fprintf(out, "  M           - Next lighting model\n")
		fmt.Fprintf(out, "  T           - Toggle texture\n")
		fmt.Fprintf(out, "  X           - Toggle wireframe\n")
		fmt.Fprintf(out, "  L           - Aim light (mouse to aim, click to set)\n")
		fmt.Fprintf(out, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(out, "  Esc         - Quit\n")
	}
	return fs
}

func shaderNames() string {
	var names []string
	for m := render.ModelDefault; ; m = m.Next() {
		names = append(names, m.String())
		if m.Next() == render.ModelDefault {
			break
		}
	}
	return strings.Join(names, ", ")
}

func main() {
	fs := newFlagSet()
	fs.Parse(os.Args[1:])

	if err := run(fs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from the defaults, the optional scene
// file and the flags, in increasing precedence.
func loadConfig(fs *flag.FlagSet) (*Config, error) {
	cfg := Default()
	if path := fs.Lookup("config").Value.String(); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		cfg.Model = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(fs *flag.FlagSet) error {
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	scene, err := LoadScene(cfg)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	if cfg.Output != "" {
		return export(cfg, scene)
	}

	// The viewer owns the terminal; logs would tear the picture.
	render.SetLogger(nil)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := newViewer(cfg, fs, scene, fs.Lookup("config").Value.String())
	if err != nil {
		return err
	}
	return v.run(ctx)
}
