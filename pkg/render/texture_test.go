package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scanline/pkg/math3d"
)

func TestBuildMipChainSizes(t *testing.T) {
	tests := []struct {
		w, h  int
		sizes [][2]int
	}{
		{8, 8, [][2]int{{8, 8}, {4, 4}, {2, 2}, {1, 1}}},
		{8, 2, [][2]int{{8, 2}, {4, 1}}},
		{5, 3, [][2]int{{5, 3}, {2, 1}}},
		{1, 16, [][2]int{{1, 16}}},
	}
	for _, tc := range tests {
		chain := BuildMipChain(NewSurface(tc.w, tc.h))
		got := make([][2]int, len(chain))
		for i, s := range chain {
			got[i] = [2]int{s.Width, s.Height}
		}
		assert.Equal(t, tc.sizes, got, "%dx%d", tc.w, tc.h)
	}
}

func TestDownsampleConstant(t *testing.T) {
	base := NewSurface(7, 6)
	for i := range base.Pixels {
		base.Pixels[i] = math3d.V3(10, 20, 30)
	}
	// Edge texels lose taps; normalization must keep the color.
	for _, lvl := range BuildMipChain(base)[1:] {
		for _, p := range lvl.Pixels {
			assert.True(t, p.ApproxEqual(math3d.V3(10, 20, 30), 1e-3), "got %v", p)
		}
	}
}

func TestDownsampleWeights(t *testing.T) {
	src := NewSurface(4, 4)
	src.Set(1, 0, math3d.Splat3(160))

	dst := downsample(src)
	require.Equal(t, 2, dst.Width)
	// Texel (0,0) sees taps at x=-1..1, y=-1..1; four are in bounds with
	// weights 4, 2, 2, 1. The lit texel (1,0) has weight 2.
	assert.InDelta(t, 160*2.0/9.0, dst.At(0, 0).X, 1e-4)
	// Texel (1,0) is centred at (2,0): taps x=1..3, y=0..1, weights sum 12.
	assert.InDelta(t, 160*2.0/12.0, dst.At(1, 0).X, 1e-4)
	assert.Zero(t, dst.At(1, 1).X)
}

func TestTex2DWraps(t *testing.T) {
	s := NewSurface(4, 2)
	for y := range 2 {
		for x := range 4 {
			s.Set(x, y, math3d.V3(float32(x), float32(y), 0))
		}
	}

	tests := []struct {
		uv   math3d.Vec2
		want math3d.Vec3
	}{
		{math3d.V2(0, 0), math3d.V3(0, 0, 0)},
		{math3d.V2(0.3, 0.7), math3d.V3(1, 1, 0)},
		{math3d.V2(0.99, 0.49), math3d.V3(3, 0, 0)},
		{math3d.V2(1.0, 1.0), math3d.V3(0, 0, 0)},
		{math3d.V2(1.3, 2.7), math3d.V3(1, 1, 0)},
		{math3d.V2(-0.1, -0.1), math3d.V3(3, 1, 0)},
		{math3d.V2(-1.3, 0.2), math3d.V3(2, 0, 0)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, s.Tex2D(tc.uv), "uv %v", tc.uv)
	}
}

func TestTex2DBilinear(t *testing.T) {
	s := NewSurface(2, 2)
	s.Set(0, 0, math3d.Splat3(0))
	s.Set(1, 0, math3d.Splat3(100))
	s.Set(0, 1, math3d.Splat3(200))
	s.Set(1, 1, math3d.Splat3(255))

	assert.Equal(t, math3d.Splat3(0), s.Tex2DBilinear(math3d.V2(0, 0)))
	assert.InDelta(t, 50, s.Tex2DBilinear(math3d.V2(0.25, 0)).X, 1e-4)
	assert.InDelta(t, 100, s.Tex2DBilinear(math3d.V2(0, 0.25)).X, 1e-4)
	// Right neighbour of the last column wraps to column 0.
	assert.InDelta(t, 50, s.Tex2DBilinear(math3d.V2(0.75, 0)).X, 1e-4)
}

func TestSelectLOD(t *testing.T) {
	tex := NewTexture(NewCheckerSurface(64, 64, 8, math3d.Splat3(255), math3d.Vec3{}))
	require.Equal(t, 7, tex.Levels())
	uv := [3]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

	tri := func(size float32) [3]ScreenPoint {
		return [3]ScreenPoint{{X: 0, Y: 0}, {X: size, Y: 0}, {X: 0, Y: size}}
	}

	assert.Equal(t, float32(0), tex.SelectLOD(tri(64), uv), "one texel per pixel")
	assert.Equal(t, float32(0), tex.SelectLOD(tri(500), uv), "magnified clamps to 0")
	assert.InDelta(t, 1, tex.SelectLOD(tri(32), uv), 1e-5)
	assert.InDelta(t, 3, tex.SelectLOD(tri(8), uv), 1e-5)
	assert.Equal(t, float32(6), tex.SelectLOD(tri(0.01), uv), "minified clamps to max")
	assert.Equal(t, float32(6), tex.SelectLOD(tri(0), uv), "degenerate uses max")

	prev := float32(-1)
	for size := float32(128); size > 0.1; size /= 1.5 {
		lod := tex.SelectLOD(tri(size), uv)
		assert.GreaterOrEqual(t, lod, prev, "size %v", size)
		prev = lod
	}
}

func TestTextureLevelPanics(t *testing.T) {
	tex := NewTexture(NewSurface(4, 4))
	assert.Equal(t, 2, tex.MaxLevel())
	assert.NotPanics(t, func() { tex.Level(2) })
	assert.Panics(t, func() { tex.Level(3) })
	assert.Panics(t, func() { tex.Level(-1) })
}

func TestSurfaceFromImageFlipsRows(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255}) // top left
	img.Set(1, 1, color.NRGBA{B: 255, A: 255}) // bottom right

	s := SurfaceFromImage(img)
	assert.Equal(t, math3d.V3(255, 0, 0), s.At(0, 1))
	assert.Equal(t, math3d.V3(0, 0, 255), s.At(1, 0))
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	tex, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tex.Levels())

	_, err = LoadTexture(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = LoadTexture(bad)
	assert.ErrorContains(t, err, "decode texture")
}
