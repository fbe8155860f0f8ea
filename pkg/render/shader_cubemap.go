package render

import (
	"github.com/taigrr/scanline/pkg/math3d"
)

// cubemapBlend is the weight of the underlying program's color in the final
// reflected color.
const cubemapBlend = 0.3

// cubemapProgram adds environment reflections to another program. Its
// reflection vector is stored right after the wrapped program's varyings.
type cubemapProgram struct {
	base   Program
	ctx    ShadingContext
	cube   *Cubemap
	offset int
}

// WithCubemap wraps base so every pixel mixes in the cube sample along the
// view-space reflection vector. It panics if cube is nil or base leaves no
// room for three more varyings.
func WithCubemap(base Program, ctx ShadingContext, cube *Cubemap) Program {
	if cube == nil {
		panic("render: cubemap program needs a cubemap")
	}
	n := base.VaryingCount()
	if n+3 > MaxVaryings {
		panic("render: no varyings left for the cubemap reflection")
	}
	Logger().Debug("cubemap bound", "base_varyings", n)
	return &cubemapProgram{base: base, ctx: ctx, cube: cube, offset: n}
}

func (p *cubemapProgram) VaryingCount() int { return p.offset + 3 }

func (p *cubemapProgram) Texture() *Texture { return p.base.Texture() }

func (p *cubemapProgram) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	pos := p.base.Vertex(in, out)
	eye := p.ctx.ViewWorld.MulVec3(in.Position).Normalize()
	norm := p.ctx.ViewWorld.MulVec3Dir(in.Normal.Normalize()).Normalize()
	out.PutVec3(eye.Reflect(norm))
	return pos
}

func (p *cubemapProgram) Pixel(in *Varyings, level *Surface) math3d.Vec3 {
	base := p.base.Pixel(in, level)
	return p.cube.Sample(in.Vec3(p.offset)).Lerp(base, cubemapBlend)
}
