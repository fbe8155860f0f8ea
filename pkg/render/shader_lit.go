package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

const (
	// blinnPower is the specular exponent of the Phong-Blinn model.
	blinnPower = 5
	// roughness is the Beckmann slope parameter of the Cook-Torrance model.
	roughness = 0.3
	// tiny keeps Cook-Torrance denominators away from zero.
	tiny = 1e-7
)

// lambert returns base*intensity + diffuse*max(cos, 0).
func lambert(ambient, diffuse math3d.Vec3, intensity, cosNL float32) math3d.Vec3 {
	return ambient.Scale(intensity).Add(diffuse.Scale(max(cosNL, 0)))
}

// lambertColor is diffuse lighting with constant material colors.
//
// Varyings: 0 cos(N·L).
type lambertColor struct {
	untextured
	ctx ShadingContext
	s   surface
}

func (*lambertColor) VaryingCount() int { return 1 }

func (p *lambertColor) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutFloat(p.ctx.worldNormal(in.Normal).Dot(p.ctx.NegLight))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *lambertColor) Pixel(in *Varyings, _ *Surface) math3d.Vec3 {
	return lambert(p.s.ambient, p.s.diffuse, p.s.intensity, in.Float(0))
}

// lambertTexture is diffuse lighting of a nearest-sampled texture.
//
// Varyings: 0-1 uv, 2 cos(N·L).
type lambertTexture struct {
	textured
	ctx ShadingContext
	s   surface
}

func (*lambertTexture) VaryingCount() int { return 3 }

func (p *lambertTexture) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec2(in.UV)
	out.PutFloat(p.ctx.worldNormal(in.Normal).Dot(p.ctx.NegLight))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *lambertTexture) Pixel(in *Varyings, level *Surface) math3d.Vec3 {
	c := p.level(level).Tex2D(in.Vec2(0))
	return lambert(c, c, p.s.intensity, in.Float(2))
}

// blinnPhong evaluates the Phong-Blinn model for unit vectors view, norm and
// light.
func blinnPhong(s *surface, ambient, diffuse, view, norm, light math3d.Vec3) math3d.Vec3 {
	half := view.Add(light).Normalize()
	cosNH := max(norm.Dot(half), 0)
	cosNL := max(norm.Dot(light), 0)

	spec := math32.Pow(cosNH, blinnPower)
	return ambient.Scale(s.intensity).
		Add(diffuse.Scale(cosNL)).
		Add(s.specular.Scale(spec))
}

// phongBlinnColor is specular lighting with constant material colors.
//
// Varyings: 0-2 view vector, 3-5 world normal.
type phongBlinnColor struct {
	untextured
	ctx ShadingContext
	s   surface
}

func (*phongBlinnColor) VaryingCount() int { return 6 }

func (p *phongBlinnColor) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec3(p.ctx.viewDir(in.Position))
	out.PutVec3(p.ctx.worldNormal(in.Normal))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *phongBlinnColor) Pixel(in *Varyings, _ *Surface) math3d.Vec3 {
	view := in.Vec3(0).Normalize()
	norm := in.Vec3(3).Normalize()
	return blinnPhong(&p.s, p.s.ambient, p.s.diffuse, view, norm, p.ctx.NegLight)
}

// phongBlinnTexture is specular lighting of a nearest-sampled texture.
//
// Varyings: 0-1 uv, 2-4 view vector, 5-7 world normal.
type phongBlinnTexture struct {
	textured
	ctx ShadingContext
	s   surface
}

func (*phongBlinnTexture) VaryingCount() int { return 8 }

func (p *phongBlinnTexture) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec2(in.UV)
	out.PutVec3(p.ctx.viewDir(in.Position))
	out.PutVec3(p.ctx.worldNormal(in.Normal))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *phongBlinnTexture) Pixel(in *Varyings, level *Surface) math3d.Vec3 {
	c := p.level(level).Tex2D(in.Vec2(0))
	view := in.Vec3(2).Normalize()
	norm := in.Vec3(5).Normalize()
	return blinnPhong(&p.s, c, c, view, norm, p.ctx.NegLight)
}

// cookTorrance evaluates the Cook-Torrance model with a Beckmann
// distribution for unit vectors view, norm and light.
func cookTorrance(s *surface, ambient, diffuse, view, norm, light math3d.Vec3) math3d.Vec3 {
	const r2 = roughness * roughness

	half := view.Add(light).Normalize()
	cosHN := max(half.Dot(norm), tiny)
	cosHN2 := cosHN * cosHN
	cosVN := max(view.Dot(norm), 0)
	cosLN := max(light.Dot(norm), 0)
	cosVH := max(view.Dot(half), 0)

	geometric := float32(1)
	if cosVH > 0 {
		geometric = min(1, 2*cosHN*min(cosVN, cosLN)/cosVH)
	}
	fresnel := 1 / (1 + cosVN)
	beckmann := math32.Exp((cosHN2-1)/(r2*cosHN2)) / (4 * r2 * cosHN2 * cosHN2)
	k := geometric * fresnel * beckmann / (cosVN*cosLN + tiny)

	return ambient.Scale(s.intensity).
		Add(diffuse.Add(s.specular.Scale(k)).Scale(cosLN))
}

// cookTorranceColor is microfacet lighting with constant material colors.
//
// Varyings: 0-2 view vector, 3-5 world normal.
type cookTorranceColor struct {
	untextured
	ctx ShadingContext
	s   surface
}

func (*cookTorranceColor) VaryingCount() int { return 6 }

func (p *cookTorranceColor) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec3(p.ctx.viewDir(in.Position))
	out.PutVec3(p.ctx.worldNormal(in.Normal))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *cookTorranceColor) Pixel(in *Varyings, _ *Surface) math3d.Vec3 {
	view := in.Vec3(0).Normalize()
	norm := in.Vec3(3).Normalize()
	return cookTorrance(&p.s, p.s.ambient, p.s.diffuse, view, norm, p.ctx.NegLight)
}

// cookTorranceTexture is microfacet lighting of a bilinear-sampled texture.
//
// Varyings: 0-1 uv, 2-4 view vector, 5-7 world normal.
type cookTorranceTexture struct {
	textured
	ctx ShadingContext
	s   surface
}

func (*cookTorranceTexture) VaryingCount() int { return 8 }

func (p *cookTorranceTexture) Vertex(in VertexIn, out *Varyings) math3d.Vec4 {
	out.PutVec2(in.UV)
	out.PutVec3(p.ctx.viewDir(in.Position))
	out.PutVec3(p.ctx.worldNormal(in.Normal))
	return p.ctx.ProjViewWorld.MulPoint(in.Position)
}

func (p *cookTorranceTexture) Pixel(in *Varyings, level *Surface) math3d.Vec3 {
	c := p.level(level).Tex2DBilinear(in.Vec2(0))
	view := in.Vec3(2).Normalize()
	norm := in.Vec3(5).Normalize()
	return cookTorrance(&p.s, c, c, view, norm, p.ctx.NegLight)
}
