package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
)

// Config is the scene description. It can be read from a YAML or TOML file
// and every field has a matching command line flag or default.
type Config struct {
	Model      string         `yaml:"model" toml:"model"`
	Texture    string         `yaml:"texture" toml:"texture"`
	Cubemap    []string       `yaml:"cubemap" toml:"cubemap"` // +X, -X, +Y, -Y, +Z, -Z
	Shader     string         `yaml:"shader" toml:"shader"`
	Material   MaterialConfig `yaml:"material" toml:"material"`
	Light      []float32      `yaml:"light" toml:"light"` // direction the light travels
	Camera     CameraConfig   `yaml:"camera" toml:"camera"`
	Background string         `yaml:"background" toml:"background"`
	FPS        int            `yaml:"fps" toml:"fps"`
	LogLevel   string         `yaml:"log_level" toml:"log_level"`

	// Headless export
	Output string `yaml:"output" toml:"output"`
	Frames int    `yaml:"frames" toml:"frames"`
	Size   string `yaml:"size" toml:"size"`
}

// MaterialConfig selects a preset or spells out the colors, 0..1 per channel.
// Explicit colors win over the preset. When both are empty the model's own
// materials are used.
type MaterialConfig struct {
	Preset   string    `yaml:"preset" toml:"preset"`
	Ambient  []float32 `yaml:"ambient" toml:"ambient"`
	Diffuse  []float32 `yaml:"diffuse" toml:"diffuse"`
	Specular []float32 `yaml:"specular" toml:"specular"`
}

// CameraConfig holds the initial camera. A zero distance frames the model.
type CameraConfig struct {
	Distance float32 `yaml:"distance" toml:"distance"`
	FOV      float32 `yaml:"fov" toml:"fov"` // degrees
	Near     float32 `yaml:"near" toml:"near"`
	Far      float32 `yaml:"far" toml:"far"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() *Config {
	return &Config{
		Shader:     render.ModelPhongBlinn.String(),
		Light:      []float32{-0.5, -1, -0.3},
		Camera:     CameraConfig{FOV: 60},
		Background: "30,30,40",
		FPS:        60,
		LogLevel:   "info",
		Frames:     1,
		Size:       "320x240",
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) scene file over the
// defaults. Relative paths in the file are resolved against its directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q (use .yaml or .toml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Model = resolvePath(dir, cfg.Model)
	cfg.Texture = resolvePath(dir, cfg.Texture)
	for i, p := range cfg.Cubemap {
		cfg.Cubemap[i] = resolvePath(dir, p)
	}
	return cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || isBuiltinModel(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Set assigns the value of the command line flag name.
func (c *Config) Set(name, value string) error {
	var err error
	switch name {
	case "texture":
		c.Texture = value
	case "shader":
		c.Shader = value
	case "material":
		c.Material = MaterialConfig{Preset: value}
	case "bg":
		c.Background = value
	case "fps":
		c.FPS, err = strconv.Atoi(value)
	case "o":
		c.Output = value
	case "frames":
		c.Frames, err = strconv.Atoi(value)
	case "size":
		c.Size = value
	case "log-level":
		c.LogLevel = value
	}
	if err != nil {
		return fmt.Errorf("flag -%s: %w", name, err)
	}
	return nil
}

// ApplyFlags overrides the config with every flag explicitly set in fs.
func (c *Config) ApplyFlags(fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err == nil {
			err = c.Set(f.Name, f.Value.String())
		}
	})
	return err
}

// Validate checks every field that is parsed later, so a bad file is
// reported before the terminal is taken over.
func (c *Config) Validate() error {
	if _, err := c.LightingModel(); err != nil {
		return err
	}
	if _, err := c.Material.Resolve(); err != nil {
		return err
	}
	if _, err := c.LightDir(); err != nil {
		return err
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, _, err := c.Dimensions(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if n := len(c.Cubemap); n != 0 && n != 6 {
		return fmt.Errorf("cubemap needs 6 faces, got %d", n)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", c.Frames)
	}
	return nil
}

// LightingModel returns the shader selected by name.
func (c *Config) LightingModel() (render.LightingModel, error) {
	return render.ParseLightingModel(c.Shader)
}

// LightDir returns the normalized light direction.
func (c *Config) LightDir() (math3d.Vec3, error) {
	v, err := vec3(c.Light)
	if err != nil {
		return v, fmt.Errorf("light: %w", err)
	}
	if v.Len() == 0 {
		return v, fmt.Errorf("light: direction is zero")
	}
	return v.Normalize(), nil
}

// BackgroundColor parses the "R,G,B" background.
func (c *Config) BackgroundColor() (uint32, error) {
	parts := strings.Split(c.Background, ",")
	if len(parts) != 3 {
		return 0, fmt.Errorf("background %q: want R,G,B", c.Background)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return 0, fmt.Errorf("background %q: %w", c.Background, err)
		}
		rgb[i] = uint8(v)
	}
	return render.PackRGB(rgb[0], rgb[1], rgb[2]), nil
}

// Dimensions parses the "WxH" export size.
func (c *Config) Dimensions() (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(c.Size), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q: want WxH", c.Size)
	}
	if w, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", c.Size, err)
	}
	if h, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("size %q: %w", c.Size, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("size %q: must be positive", c.Size)
	}
	return w, h, nil
}

// SlogLevel parses the log level (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

// ApplyCamera sets up cam for a model normalized to the [-1, 1] cube.
func (c *Config) ApplyCamera(cam *render.Camera) {
	if c.Camera.FOV > 0 {
		cam.SetFOV(c.Camera.FOV * math32.Pi / 180)
	}
	cam.Frame(math3d.Splat3(-1), math3d.Splat3(1))
	if c.Camera.Distance > 0 {
		cam.SetOrbit(c.Camera.Distance, cam.Yaw, cam.Pitch)
	}
	near, far := cam.Near, cam.Far
	if c.Camera.Near > 0 {
		near = c.Camera.Near
	}
	if c.Camera.Far > 0 {
		far = c.Camera.Far
	}
	cam.SetClipPlanes(near, far)
}

// Resolve returns the configured material, or nil when the model's own
// materials should be used.
func (m MaterialConfig) Resolve() (*render.Material, error) {
	if len(m.Ambient)+len(m.Diffuse)+len(m.Specular) > 0 {
		var colors [3]math3d.Vec3
		for i, c := range [3][]float32{m.Ambient, m.Diffuse, m.Specular} {
			if len(c) == 0 {
				continue
			}
			v, err := vec3(c)
			if err != nil {
				return nil, fmt.Errorf("material: %w", err)
			}
			colors[i] = v.Scale(255)
		}
		name := m.Preset
		if name == "" {
			name = "custom"
		}
		return render.NewMaterial(name, colors[0], colors[1], colors[2]), nil
	}
	if m.Preset == "" {
		return nil, nil
	}
	return render.MaterialPreset(m.Preset)
}

func vec3(v []float32) (math3d.Vec3, error) {
	if len(v) != 3 {
		return math3d.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}
