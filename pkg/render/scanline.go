package render

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// edgeEpsilon guards edge slopes against near-horizontal edges and biases
// span bounds so pixel centres lying exactly on a shared edge belong to one
// triangle only.
const edgeEpsilon = 1e-4

// ScreenPoint is a vertex after perspective divide and viewport mapping.
// Y grows upward. InvDepth is 1/w of the clip-space position.
type ScreenPoint struct {
	X, Y     float32
	InvDepth float32
}

// ScreenTriangle is the input of FillTriangle: three screen points and their
// varyings, already multiplied by InvDepth.
type ScreenTriangle struct {
	Points   [3]ScreenPoint
	Varyings [3]Varyings
}

// PixelShader computes the color of a covered pixel from its interpolated
// varyings. level is the mip level chosen for the triangle, or nil.
type PixelShader interface {
	Pixel(in *Varyings, level *Surface) math3d.Vec3
}

// attrs packs the interpolated quantities of a vertex or edge:
// [0] screen x, [1] inverse depth, [2:] varyings divided by w.
type attrs [MaxVaryings + 2]float32

// FillTriangle scan-converts tri into fb. Pixels whose centre lies inside the
// triangle and whose inverse depth is strictly greater than the stored one
// are shaded by ps and written. It reports false when the triangle was
// rejected as lying entirely off screen.
//
// It panics if the three varyings buffers have different lengths.
func FillTriangle(fb *FrameBuffer, tri *ScreenTriangle, ps PixelShader, level *Surface) bool {
	n := tri.Varyings[0].n
	if tri.Varyings[1].n != n || tri.Varyings[2].n != n {
		panic(fmt.Sprintf("render: triangle varyings length mismatch: %d, %d, %d",
			n, tri.Varyings[1].n, tri.Varyings[2].n))
	}

	var v [3]attrs
	var y [3]float32
	for i := range 3 {
		p := tri.Points[i]
		v[i][0] = p.X
		v[i][1] = p.InvDepth
		copy(v[i][2:], tri.Varyings[i].v[:n])
		y[i] = p.Y
	}

	// a is the top vertex, c the bottom one.
	ia, ib, ic := 0, 1, 2
	if y[ia] < y[ib] {
		ia, ib = ib, ia
	}
	if y[ia] < y[ic] {
		ia, ic = ic, ia
	}
	if y[ib] < y[ic] {
		ib, ic = ic, ib
	}
	a, b, c := &v[ia], &v[ib], &v[ic]
	ay, by, cy := y[ia], y[ib], y[ic]

	const lo = 0.5
	hiX := float32(fb.Width) - lo
	hiY := float32(fb.Height) - lo
	if ay < lo || cy > hiY {
		return false
	}
	if (a[0] < lo && b[0] < lo && c[0] < lo) || (a[0] > hiX && b[0] > hiX && c[0] > hiX) {
		return false
	}

	m := n + 2
	var ab, ac, bc attrs
	edgeSlope(&ab, a, b, m, ay-by)
	edgeSlope(&ac, a, c, m, ay-cy)
	edgeSlope(&bc, b, c, m, by-cy)

	y0 := spanIndex(cy+0.5, fb.Height)
	y1 := spanIndex(by+0.5, fb.Height)
	y2 := spanIndex(ay+0.5, fb.Height)

	var frag Varyings
	frag.n = n

	// Lower span grows up from c; the steeper rightward slope bounds it on
	// the right.
	if bc[0] > ac[0] {
		fillSpan(fb, y0, y1, c, cy, &ac, &bc, m, &frag, ps, level)
	} else {
		fillSpan(fb, y0, y1, c, cy, &bc, &ac, m, &frag, ps, level)
	}
	// Upper span is anchored at a and walked below it, so the larger slope
	// is on the left.
	if ab[0] > ac[0] {
		fillSpan(fb, y1, y2, a, ay, &ab, &ac, m, &frag, ps, level)
	} else {
		fillSpan(fb, y1, y2, a, ay, &ac, &ab, m, &frag, ps, level)
	}
	return true
}

// edgeSlope stores d(attr)/dy of the edge from bottom to top in dst.
func edgeSlope(dst, top, bottom *attrs, m int, dy float32) {
	inv := float32(1 / edgeEpsilon)
	if dy > edgeEpsilon {
		inv = 1 / dy
	}
	for k := range m {
		dst[k] = (top[k] - bottom[k]) * inv
	}
}

// spanIndex truncates v and clamps it to [0, hi].
func spanIndex(v float32, hi int) int {
	if v <= 0 {
		return 0
	}
	if v >= float32(hi) {
		return hi
	}
	return int(v)
}

// fillSpan fills rows [yBegin, yEnd) between the left and right edges that
// meet at base.
func fillSpan(fb *FrameBuffer, yBegin, yEnd int, base *attrs, baseY float32,
	left, right *attrs, m int, frag *Varyings, ps PixelShader, level *Surface,
) {
	if yBegin >= yEnd {
		return
	}

	// l holds the left edge values at the current row, d the difference
	// between the left and right edge values.
	var l, d, dStep attrs
	yStep := float32(yBegin) + 0.5 - baseY
	for k := range m {
		l[k] = base[k] + yStep*left[k]
		dStep[k] = left[k] - right[k]
		d[k] = yStep * dStep[k]
	}
	l[0] += 0.5 - edgeEpsilon
	xr := base[0] + yStep*right[0] + 0.5 - edgeEpsilon

	var acc, step attrs
	for y := yBegin; y < yEnd; y++ {
		x1 := spanIndex(l[0], fb.Width)
		x2 := spanIndex(xr, fb.Width)
		if x2 > x1 {
			inv := 1 / d[0]
			off := float32(x1) - l[0] - edgeEpsilon
			for k := 1; k < m; k++ {
				step[k] = d[k] * inv
				acc[k] = l[k] + step[k]*off
			}

			row := y * fb.Width
			for x := x1; x < x2; x++ {
				for k := 1; k < m; k++ {
					acc[k] += step[k]
				}
				if z := acc[1]; fb.Depth[row+x] < z {
					w := 1 / z
					for k := range frag.n {
						frag.v[k] = acc[k+2] * w
					}
					fb.Color[row+x] = packColor(ps.Pixel(frag, level))
					fb.Depth[row+x] = z
				}
			}
		}

		for k := range m {
			l[k] += left[k]
			d[k] += dStep[k]
		}
		xr += right[0]
	}
}

// packColor clamps c to [0,255] per channel and packs it as 0x00RRGGBB.
func packColor(c math3d.Vec3) uint32 {
	c = c.Clamp(0, 255)
	return uint32(c.X)<<16 | uint32(c.Y)<<8 | uint32(c.Z)
}
