package render

import (
	"fmt"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// VertexIn is the per-vertex input of a vertex stage.
type VertexIn struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// ShadingContext carries the per-draw values every shader stage reads.
// It is a plain value and is never modified while a draw is in progress.
type ShadingContext struct {
	ProjViewWorld math3d.Mat4
	World         math3d.Mat4
	ViewWorld     math3d.Mat4

	// NegLight is the unit vector from a surface toward the light.
	NegLight math3d.Vec3
	// Eye is the camera position in world space.
	Eye math3d.Vec3
}

// NewShadingContext combines the projection, view and world matrices and
// derives the light vector from the direction the light travels in.
func NewShadingContext(proj, view, world math3d.Mat4, lightDir, eye math3d.Vec3) ShadingContext {
	viewWorld := view.Mul(world)
	return ShadingContext{
		ProjViewWorld: proj.Mul(viewWorld),
		World:         world,
		ViewWorld:     viewWorld,
		NegLight:      lightDir.Normalize().Negate(),
		Eye:           eye,
	}
}

// worldNormal transforms n into world space and normalizes it.
func (c *ShadingContext) worldNormal(n math3d.Vec3) math3d.Vec3 {
	return c.World.MulVec3Dir(n).Normalize()
}

// viewDir returns the unit vector from the world position of p to the eye.
func (c *ShadingContext) viewDir(p math3d.Vec3) math3d.Vec3 {
	return c.Eye.Sub(c.World.MulVec3(p)).Normalize()
}

// Program is a paired vertex and pixel stage.
//
// Vertex writes exactly VaryingCount values to out and returns the clip-space
// position. Pixel receives the perspective-correct interpolation of those
// values and returns an unclamped RGB color in the 0..255 range.
type Program interface {
	VaryingCount() int
	Vertex(in VertexIn, out *Varyings) math3d.Vec4
	Pixel(in *Varyings, level *Surface) math3d.Vec3
	// Texture returns the texture whose mip level is passed to Pixel, or
	// nil if the program does not sample one.
	Texture() *Texture
}

// LightingModel selects a shader family.
type LightingModel int

const (
	ModelDefault LightingModel = iota
	ModelNormal
	ModelLambert
	ModelPhongBlinn
	ModelCookTorrance

	modelCount
)

var modelNames = [modelCount]string{
	ModelDefault:      "default",
	ModelNormal:       "normal",
	ModelLambert:      "lambert",
	ModelPhongBlinn:   "phong-blinn",
	ModelCookTorrance: "cook-torrance",
}

func (m LightingModel) String() string {
	if m < 0 || m >= modelCount {
		return fmt.Sprintf("LightingModel(%d)", int(m))
	}
	return modelNames[m]
}

// Next returns the following model, wrapping around after the last one.
func (m LightingModel) Next() LightingModel {
	return (m + 1) % modelCount
}

// ParseLightingModel parses a model name as printed by String.
func ParseLightingModel(s string) (LightingModel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modelNames {
		if s == name {
			return LightingModel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shader %q (want one of %s)", s, strings.Join(modelNames[:], ", "))
}

// NewProgram builds the program for model. Lit models take their colors from
// mat and switch to their textured variant when mat carries a texture. When
// mat carries a cubemap the program is wrapped with environment reflections.
//
// It panics if a lit model is requested without a material.
func NewProgram(model LightingModel, ctx ShadingContext, mat *Material) Program {
	var p Program
	switch model {
	case ModelDefault:
		p = &defaultProgram{ctx: ctx}
	case ModelNormal:
		p = &normalProgram{ctx: ctx}
	case ModelLambert, ModelPhongBlinn, ModelCookTorrance:
		if mat == nil {
			panic(fmt.Sprintf("render: %s program needs a material", model))
		}
		p = newLitProgram(model, ctx, mat)
	default:
		panic(fmt.Sprintf("render: unknown lighting model %d", int(model)))
	}
	if mat != nil && mat.Cubemap != nil {
		p = WithCubemap(p, ctx, mat.Cubemap)
	}
	return p
}

func newLitProgram(model LightingModel, ctx ShadingContext, mat *Material) Program {
	s := surface{
		ambient:   mat.Ambient,
		diffuse:   mat.Diffuse,
		specular:  mat.Specular,
		intensity: mat.AmbientIntensity,
	}
	if mat.Texture == nil {
		switch model {
		case ModelLambert:
			return &lambertColor{ctx: ctx, s: s}
		case ModelPhongBlinn:
			return &phongBlinnColor{ctx: ctx, s: s}
		default:
			return &cookTorranceColor{ctx: ctx, s: s}
		}
	}
	t := textured{tex: mat.Texture}
	switch model {
	case ModelLambert:
		return &lambertTexture{ctx: ctx, s: s, textured: t}
	case ModelPhongBlinn:
		return &phongBlinnTexture{ctx: ctx, s: s, textured: t}
	default:
		return &cookTorranceTexture{ctx: ctx, s: s, textured: t}
	}
}

// surface holds the material colors copied into a lit program.
type surface struct {
	ambient, diffuse, specular math3d.Vec3
	intensity                  float32
}

// untextured is embedded by programs that sample nothing.
type untextured struct{}

func (untextured) Texture() *Texture { return nil }

// textured is embedded by programs that sample a texture.
type textured struct {
	tex *Texture
}

func (t textured) Texture() *Texture { return t.tex }

// level returns the surface to sample, falling back to the finest level
// when no level was chosen.
func (t textured) level(l *Surface) *Surface {
	if l != nil {
		return l
	}
	return t.tex.Level(0)
}

// defaultProgram paints every pixel white.
type defaultProgram struct {
	untextured
	ctx ShadingContext
}

func (*defaultProgram) VaryingCount() int { return 0 }

func (p *defaultProgram) Vertex(in VertexIn, _ *Varyings) math3d.Vec4 {
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (*defaultProgram) Pixel(*Varyings, *Surface) math3d.Vec3 {
	return math3d.Splat3(255)
}

// normalProgram visualizes world-space normals.
type normalProgram struct {
	untextured
	ctx ShadingContext
}

func (*normalProgram) VaryingCount() int { return 3 }

func (p *normalProgram) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec3(p.ctx.worldNormal(in.Normal))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

// Pixel maps the interpolated normal as is; it is shorter than unit length
// between vertices.
func (*normalProgram) Pixel(in *Varyings, _ *Surface) math3d.Vec3 {
	return in.Vec3(0).Add(math3d.Splat3(1)).Scale(127.5)
}
