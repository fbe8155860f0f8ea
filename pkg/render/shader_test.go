package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scanline/pkg/math3d"
)

func identityContext() ShadingContext {
	// Light travels down -Z, so surfaces facing +Z are fully lit.
	return NewShadingContext(math3d.Identity(), math3d.Identity(), math3d.Identity(),
		math3d.V3(0, 0, -1), math3d.V3(0, 0, 10))
}

func solidCube() *Cubemap {
	var faces [6]*Texture
	for i := range faces {
		s := NewSurface(2, 2)
		for k := range s.Pixels {
			s.Pixels[k] = math3d.Splat3(float32(10 * (i + 1)))
		}
		faces[i] = NewTexture(s)
	}
	return NewCubemap(faces)
}

func TestNewProgramVaryingCounts(t *testing.T) {
	ctx := identityContext()
	tex := NewTexture(NewSurface(4, 4))

	tests := []struct {
		model LightingModel
		mat   *Material
		want  int
	}{
		{ModelDefault, nil, 0},
		{ModelNormal, nil, 3},
		{ModelLambert, Gold(), 1},
		{ModelLambert, Gold().WithTexture(tex), 3},
		{ModelPhongBlinn, Silver(), 6},
		{ModelPhongBlinn, Silver().WithTexture(tex), 8},
		{ModelCookTorrance, Gold(), 6},
		{ModelCookTorrance, Gold().WithTexture(tex), 8},
		{ModelPhongBlinn, Silver().WithCubemap(solidCube()), 9},
		{ModelCookTorrance, Gold().WithTexture(tex).WithCubemap(solidCube()), 11},
	}
	for _, tc := range tests {
		p := NewProgram(tc.model, ctx, tc.mat)
		assert.Equal(t, tc.want, p.VaryingCount(), "%s", tc.model)

		var out Varyings
		p.Vertex(VertexIn{Normal: math3d.V3(0, 0, 1)}, &out)
		assert.Equal(t, tc.want, out.Len(), "%s vertex stage", tc.model)

		if tc.mat != nil && tc.mat.Texture != nil {
			assert.Same(t, tex, p.Texture())
		} else {
			assert.Nil(t, p.Texture())
		}
	}
}

func TestNewProgramNeedsMaterial(t *testing.T) {
	assert.Panics(t, func() { NewProgram(ModelLambert, identityContext(), nil) })
	assert.Panics(t, func() { NewProgram(LightingModel(42), identityContext(), nil) })
}

func TestDefaultAndNormalPixels(t *testing.T) {
	ctx := identityContext()
	assert.Equal(t, math3d.Splat3(255), NewProgram(ModelDefault, ctx, nil).Pixel(&Varyings{}, nil))

	var in Varyings
	in.PutVec3(math3d.V3(0, 0, 1))
	got := NewProgram(ModelNormal, ctx, nil).Pixel(&in, nil)
	assert.Equal(t, math3d.V3(127.5, 127.5, 255), got)

	// Interpolated normals are not renormalized.
	in.Reset()
	in.PutVec3(math3d.V3(0, 0.5, 0))
	got = NewProgram(ModelNormal, ctx, nil).Pixel(&in, nil)
	assert.Equal(t, math3d.V3(127.5, 191.25, 127.5), got)
}

func TestLambert(t *testing.T) {
	mat := NewMaterial("m", math3d.Splat3(20), math3d.Splat3(100), math3d.Vec3{})
	p := NewProgram(ModelLambert, identityContext(), mat)

	var out Varyings
	p.Vertex(VertexIn{Normal: math3d.V3(0, 0, 1)}, &out)
	assert.InDelta(t, 1, out.Float(0), 1e-6, "normal faces the light")

	tests := []struct {
		cos  float32
		want float32
	}{
		{1, 20*0.2 + 100},
		{0.5, 20*0.2 + 50},
		{-0.7, 20 * 0.2},
	}
	for _, tc := range tests {
		var in Varyings
		in.PutFloat(tc.cos)
		assert.InDelta(t, tc.want, p.Pixel(&in, nil).X, 1e-3, "cos %v", tc.cos)
	}
}

func TestPhongBlinnHighlight(t *testing.T) {
	mat := NewMaterial("m", math3d.Vec3{}, math3d.Splat3(100), math3d.Splat3(50))
	p := NewProgram(ModelPhongBlinn, identityContext(), mat)

	shade := func(view, norm math3d.Vec3) float32 {
		var in Varyings
		in.PutVec3(view)
		in.PutVec3(norm)
		return p.Pixel(&in, nil).X
	}

	// View, light and normal aligned: full diffuse plus full specular.
	assert.InDelta(t, 150, shade(math3d.V3(0, 0, 1), math3d.V3(0, 0, 1)), 1e-3)
	// Normal facing away from the light: no diffuse.
	assert.InDelta(t, 0, shade(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1)), 1e-3)

	// Half vector at 45° from the normal: specular is cos^5.
	got := shade(math3d.V3(1, 0, 0), math3d.V3(0, 0, 1))
	assert.InDelta(t, 100+50*math32.Pow(math32.Cos(math32.Pi/4), 5), got, 1e-2)
}

func TestCookTorrance(t *testing.T) {
	mat := NewMaterial("m", math3d.Splat3(10), math3d.Splat3(100), math3d.Splat3(50))
	p := NewProgram(ModelCookTorrance, identityContext(), mat)

	shade := func(view, norm math3d.Vec3) math3d.Vec3 {
		var in Varyings
		in.PutVec3(view)
		in.PutVec3(norm)
		return p.Pixel(&in, nil)
	}

	head := shade(math3d.V3(0, 0, 1), math3d.V3(0, 0, 1))
	graze := shade(math3d.V3(0, 0, 1), math3d.V3(0, 1, 1).Normalize())
	back := shade(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1))
	opposite := shade(math3d.V3(0, 0, -1), math3d.V3(0, 0, 1))

	for _, c := range []math3d.Vec3{head, graze, back, opposite} {
		assert.False(t, math32.IsNaN(c.X) || math32.IsInf(c.X, 0), "got %v", c)
	}
	// Aligned: D = 1/(4 m^2), G = 1, F = 1/2, so k = 1/(8 m^2).
	k := float32(1 / (8 * roughness * roughness))
	assert.InDelta(t, mat.AmbientIntensity*10+100+50*k, head.X, 1e-2)
	assert.Greater(t, head.X, graze.X)
	assert.InDelta(t, mat.AmbientIntensity*10, back.X, 1e-3, "unlit side keeps ambient only")
}

func TestTexturedVariantsSample(t *testing.T) {
	s := NewSurface(2, 2)
	s.Set(0, 0, math3d.V3(200, 0, 0))
	s.Set(1, 0, math3d.V3(0, 200, 0))
	tex := NewTexture(s)
	mat := NewMaterial("m", math3d.Vec3{}, math3d.Vec3{}, math3d.Vec3{}).WithTexture(tex)

	p := NewProgram(ModelLambert, identityContext(), mat)
	var in Varyings
	in.PutVec2(math3d.V2(0.75, 0.25))
	in.PutFloat(1)
	assert.Equal(t, math3d.V3(0, 200, 0), p.Pixel(&in, nil), "nil level falls back to level 0")
	assert.Equal(t, tex.Level(1).At(0, 0), p.Pixel(&in, tex.Level(1)))
}

func TestCubeFaceUV(t *testing.T) {
	tests := []struct {
		name string
		dir  math3d.Vec3
		face int
		uv   math3d.Vec2
	}{
		{"+x", math3d.V3(1, 0, 0), FacePosX, math3d.V2(0.5, 0.5)},
		{"-x", math3d.V3(-1, 0, 0), FaceNegX, math3d.V2(0.5, 0.5)},
		{"+y", math3d.V3(0, 1, 0), FacePosY, math3d.V2(0.5, 0.5)},
		{"-y", math3d.V3(0, -1, 0), FaceNegY, math3d.V2(0.5, 0.5)},
		{"+z", math3d.V3(0, 0, 1), FacePosZ, math3d.V2(0.5, 0.5)},
		{"-z", math3d.V3(0, 0, -5), FaceNegZ, math3d.V2(0.5, 0.5)},
		{"+x corner", math3d.V3(2, 1, -1), FacePosX, math3d.V2(0.75, 0.75)},
		{"x ties go to z", math3d.V3(1, 0, 1), FacePosZ, math3d.V2(1, 0.5)},
		{"x y tie goes to y", math3d.V3(1, 1, 0), FacePosY, math3d.V2(1, 0.5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			face, uv, ok := cubeFaceUV(tc.dir)
			require.True(t, ok)
			assert.Equal(t, tc.face, face)
			assert.InDelta(t, tc.uv.X, uv.X, 1e-5)
			assert.InDelta(t, tc.uv.Y, uv.Y, 1e-5)
		})
	}

	_, _, ok := cubeFaceUV(math3d.Vec3{})
	assert.False(t, ok)
}

func TestCubemapProgram(t *testing.T) {
	cube := solidCube()
	ctx := identityContext()
	p := NewProgram(ModelDefault, ctx, &Material{Cubemap: cube})
	require.Equal(t, 3, p.VaryingCount())

	var out Varyings
	p.Vertex(VertexIn{Position: math3d.V3(0, 0, -1), Normal: math3d.V3(0, 0, 1)}, &out)
	// Looking down -Z at a surface facing +Z reflects back along +Z.
	assert.True(t, out.Vec3(0).ApproxEqual(math3d.V3(0, 0, 1), 1e-5), "got %v", out.Vec3(0))

	got := p.Pixel(&out, nil)
	want := cube.Sample(math3d.V3(0, 0, 1)).Lerp(math3d.Splat3(255), cubemapBlend)
	assert.True(t, got.ApproxEqual(want, 1e-3), "got %v want %v", got, want)

	assert.Panics(t, func() { WithCubemap(p, ctx, nil) })
	full := WithCubemap(NewProgram(ModelCookTorrance, ctx,
		Gold().WithTexture(NewTexture(NewSurface(2, 2))).WithCubemap(cube)), ctx, cube)
	require.Equal(t, 14, full.VaryingCount())
	assert.Panics(t, func() { WithCubemap(full, ctx, cube) })
}

func TestVaryingsOverflow(t *testing.T) {
	var v Varyings
	for range 5 {
		v.PutVec3(math3d.Splat3(1))
	}
	v.PutFloat(1)
	assert.Equal(t, MaxVaryings, v.Len())
	assert.Panics(t, func() { v.PutFloat(1) })

	v.Reset()
	assert.Zero(t, v.Len())
	v.PutVec2(math3d.V2(1, 2))
	assert.Equal(t, math3d.V2(1, 2), v.Vec2(0))
}

func TestLightingModelNames(t *testing.T) {
	for m := ModelDefault; m < modelCount; m++ {
		got, err := ParseLightingModel(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	assert.Equal(t, ModelDefault, ModelCookTorrance.Next())

	_, err := ParseLightingModel("toon")
	assert.ErrorContains(t, err, "unknown shader")
}

func TestMaterialPresets(t *testing.T) {
	assert.Equal(t, []string{"gold", "monster-skin", "silver"}, PresetNames())

	gold, err := MaterialPreset("Gold")
	require.NoError(t, err)
	assert.InDelta(t, luminance(gold.Ambient)/luminance(gold.Diffuse), gold.AmbientIntensity, 1e-6)
	assert.InDelta(t, 1, MonsterSkin().AmbientIntensity, 1e-6)

	_, err = MaterialPreset("wood")
	assert.Error(t, err)
}
