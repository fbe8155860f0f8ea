package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Material describes surface reflectance. Colors are RGB in the 0..255 range.
// A Material is shared by pointer and must not be modified once programs
// have been built from it.
type Material struct {
	Name     string
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Specular math3d.Vec3

	// AmbientIntensity scales the ambient (or sampled) color.
	AmbientIntensity float32

	Texture *Texture // optional; selects the textured shader variants
	Cubemap *Cubemap // optional; enables environment reflections
}

// NewMaterial creates a material whose ambient intensity is the luminance
// ratio of the ambient color to the diffuse color.
func NewMaterial(name string, ambient, diffuse, specular math3d.Vec3) *Material {
	var intensity float32
	if d := luminance(diffuse); d != 0 {
		intensity = luminance(ambient) / d
	}
	return &Material{
		Name:             name,
		Ambient:          ambient,
		Diffuse:          diffuse,
		Specular:         specular,
		AmbientIntensity: intensity,
	}
}

// luminance returns the Rec. 709 relative luminance of c.
func luminance(c math3d.Vec3) float32 {
	return 0.212671*c.X + 0.715160*c.Y + 0.072169*c.Z
}

// Gold returns the polished gold preset.
func Gold() *Material {
	return NewMaterial("gold",
		math3d.V3(63.059, 50.783, 18.998),
		math3d.V3(191.668, 154.652, 57.752),
		math3d.V3(160.212, 141.73, 93.347))
}

// Silver returns the polished silver preset.
func Silver() *Material {
	return NewMaterial("silver",
		math3d.Splat3(49.024),
		math3d.Splat3(129.423),
		math3d.Splat3(129.61))
}

// MonsterSkin returns a flat warm preset meant to be paired with a texture.
func MonsterSkin() *Material {
	c := math3d.V3(249, 202, 104)
	return NewMaterial("monster-skin", c, c, c)
}

var presets = map[string]func() *Material{
	"gold":         Gold,
	"silver":       Silver,
	"monster-skin": MonsterSkin,
}

// MaterialPreset returns a fresh copy of the named preset.
func MaterialPreset(name string) (*Material, error) {
	ctor, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown material %q (want one of %s)", name, strings.Join(PresetNames(), ", "))
	}
	return ctor(), nil
}

// PresetNames returns the names of the built-in materials, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// WithTexture returns a copy of m carrying tex.
func (m *Material) WithTexture(tex *Texture) *Material {
	c := *m
	c.Texture = tex
	return &c
}

// WithCubemap returns a copy of m carrying cube.
func (m *Material) WithCubemap(cube *Cubemap) *Material {
	c := *m
	c.Cubemap = cube
	return &c
}
