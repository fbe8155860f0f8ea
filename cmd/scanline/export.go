package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// export renders the scene without a terminal. One frame is written to
// cfg.Output; more frames make a turntable around the Y axis, written as
// numbered files next to it.
func export(cfg *Config, scene *Scene) error {
	w, h, err := cfg.Dimensions()
	if err != nil {
		return err
	}
	model, err := cfg.LightingModel()
	if err != nil {
		return err
	}
	light, err := cfg.LightDir()
	if err != nil {
		return err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	fb := render.NewFrameBuffer(w, h)
	r := render.NewRasterizer(fb)
	cam := render.NewCamera()
	cam.SetAspect(float32(w) / float32(h))
	cfg.ApplyCamera(cam)

	frame := func(angle float32, path string) error {
		fb.Clear(bg)
		scene.Draw(r, scene.Context(cam, math3d.RotateY(angle), light), model, true)
		return fb.SavePNG(path)
	}

	if cfg.Frames == 1 {
		if err := frame(0, cfg.Output); err != nil {
			return err
		}
		slog.Info("snapshot written", "path", cfg.Output, "triangles", r.Stats.Rasterized)
		return nil
	}

	pb := progressbar.Default(int64(cfg.Frames), "rendering")
	defer pb.Close()
	for i := range cfg.Frames {
		angle := 2 * math32.Pi * float32(i) / float32(cfg.Frames)
		if err := frame(angle, framePath(cfg.Output, i)); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		pb.Add(1)
	}
	slog.Info("turntable written", "frames", cfg.Frames, "first", framePath(cfg.Output, 0))
	return nil
}

// framePath numbers a turntable frame: out/spin.png becomes out/spin_007.png.
func framePath(output string, i int) string {
	ext := filepath.Ext(output)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(output, filepath.Ext(output)), i, ext)
}
