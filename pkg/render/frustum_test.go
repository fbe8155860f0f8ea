package render

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/taigrr/scanline/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float32
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, plane.DistanceToPoint(tc.point), 1e-6)
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	assert.InDelta(t, 1.0, plane.Normal.Len(), 1e-6)
	assert.InDelta(t, 0.6, plane.Normal.Y, 1e-6)
	assert.InDelta(t, 0.8, plane.Normal.Z, 1e-6)
	assert.InDelta(t, 2.0, plane.D, 1e-6, "D is scaled with the normal")

	zero := Plane{D: 3}
	zero.Normalize()
	assert.Equal(t, float32(3), zero.D, "zero normal is left alone")
}

func TestAABBBasics(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -2, -3), Max: math3d.V3(1, 2, 3)}

	assert.Equal(t, math3d.V3(0, 0, 0), box.Center())
	assert.Equal(t, math3d.V3(2, 4, 6), box.Size())
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}

	t.Run("translation", func(t *testing.T) {
		got := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))
		assert.True(t, got.Min.ApproxEqual(math3d.V3(9, 19, 29), 1e-5), "min = %v", got.Min)
		assert.True(t, got.Max.ApproxEqual(math3d.V3(11, 21, 31), 1e-5), "max = %v", got.Max)
	})

	t.Run("scale", func(t *testing.T) {
		got := box.Transform(math3d.ScaleUniform(2))
		assert.True(t, got.Min.ApproxEqual(math3d.Splat3(-2), 1e-5), "min = %v", got.Min)
		assert.True(t, got.Max.ApproxEqual(math3d.Splat3(2), 1e-5), "max = %v", got.Max)
	})

	t.Run("rotation grows the box", func(t *testing.T) {
		got := box.Transform(math3d.RotateY(math32.Pi / 4))
		r := math32.Sqrt(2)
		assert.InDelta(t, r, got.Max.X, 1e-5)
		assert.InDelta(t, r, got.Max.Z, 1e-5)
		assert.InDelta(t, 1, got.Max.Y, 1e-5)
	})
}

func testFrustum(near, far float32) Frustum {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, near, far)
	// Camera at origin looking down -Z
	return NewFrustumFromMatrix(proj.Mul(math3d.Identity()))
}

func TestFrustumFromPerspective(t *testing.T) {
	frustum := testFrustum(0.1, 100)
	for i, plane := range frustum.Planes {
		assert.InDelta(t, 1.0, plane.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	frustum := testFrustum(0.1, 100)

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center near", math3d.V3(0, 0, -1), true},
		{"center mid", math3d.V3(0, 0, -50), true},
		{"center far", math3d.V3(0, 0, -99), true},
		{"behind camera", math3d.V3(0, 0, 1), false},
		{"too far", math3d.V3(0, 0, -200), false},
		{"too close", math3d.V3(0, 0, -0.01), false},
		{"far left", math3d.V3(-100, 0, -5), false},
		{"far above", math3d.V3(0, 100, -5), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, frustum.ContainsPoint(tc.point))
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	frustum := testFrustum(1, 100)

	tests := []struct {
		name     string
		box      AABB
		expected bool
	}{
		{"inside", AABB{math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5)}, true},
		{"behind camera", AABB{math3d.V3(-1, -1, 5), math3d.V3(1, 1, 10)}, false},
		{"beyond far plane", AABB{math3d.V3(-1, -1, -300), math3d.V3(1, 1, -200)}, false},
		{"straddles near plane", AABB{math3d.V3(-1, -1, -2), math3d.V3(1, 1, 2)}, true},
		{"left of view", AABB{math3d.V3(-100, -1, -6), math3d.V3(-90, 1, -5)}, false},
		{"right of view", AABB{math3d.V3(90, -1, -6), math3d.V3(100, 1, -5)}, false},
		{"encloses frustum", AABB{math3d.Splat3(-500), math3d.Splat3(500)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, frustum.IntersectAABB(tc.box))
		})
	}
}

func TestFrustumModelSpace(t *testing.T) {
	// Planes extracted from a full matrix test the untransformed box.
	proj := math3d.Perspective(math32.Pi/3, 1, 0.1, 100)
	view := math3d.LookAt(math3d.V3(0, 0, 5), math3d.Vec3{}, math3d.Up())
	box := AABB{Min: math3d.Splat3(-1), Max: math3d.Splat3(1)}

	visible := NewFrustumFromMatrix(proj.Mul(view).Mul(math3d.Identity()))
	assert.True(t, visible.IntersectAABB(box))

	pushedAway := proj.Mul(view).Mul(math3d.Translate(math3d.V3(0, 0, 20)))
	assert.False(t, NewFrustumFromMatrix(pushedAway).IntersectAABB(box), "box moved behind the eye")

	shifted := proj.Mul(view).Mul(math3d.Translate(math3d.V3(50, 0, 0)))
	assert.False(t, NewFrustumFromMatrix(shifted).IntersectAABB(box), "box moved off to the side")
}

func BenchmarkFrustumExtraction(b *testing.B) {
	proj := math3d.Perspective(math32.Pi/3, 16.0/9.0, 0.1, 100)
	for b.Loop() {
		_ = NewFrustumFromMatrix(proj)
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	frustum := testFrustum(0.1, 100)
	visible := AABB{Min: math3d.V3(-1, -1, -15), Max: math3d.V3(1, 1, -5)}
	culled := AABB{Min: math3d.V3(-1, -1, 5), Max: math3d.V3(1, 1, 15)}

	b.Run("visible", func(b *testing.B) {
		for b.Loop() {
			_ = frustum.IntersectAABB(visible)
		}
	})
	b.Run("culled", func(b *testing.B) {
		for b.Loop() {
			_ = frustum.IntersectAABB(culled)
		}
	})
}

func BenchmarkAABBTransform(b *testing.B) {
	local := AABB{Min: math3d.Splat3(-1), Max: math3d.Splat3(1)}
	transform := math3d.Translate(math3d.V3(10, 5, -20)).Mul(math3d.RotateY(0.5)).Mul(math3d.ScaleUniform(2))
	for b.Loop() {
		_ = local.Transform(transform)
	}
}
