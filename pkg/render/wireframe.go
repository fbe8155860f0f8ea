package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Wireframe draws mesh edges and helper lines over a framebuffer. Lines
// ignore and do not update depth.
type Wireframe struct {
	fb *FrameBuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(fb *FrameBuffer) *Wireframe {
	return &Wireframe{fb: fb}
}

// project maps a model-space point to pixel coordinates. ok is false when
// the point is at or behind the eye.
func (w *Wireframe) project(ctx ShadingContext, p math3d.Vec3) (x, y float32, ok bool) {
	clip := ctx.ProjViewWorld.MulPoint(p)
	if clip.W <= 0 {
		return 0, 0, false
	}
	x = (clip.X/clip.W + 1) * float32(w.fb.Width) * 0.5
	y = (clip.Y/clip.W + 1) * float32(w.fb.Height) * 0.5
	return x, y, true
}

// DrawLine3D draws the model-space segment a-b. Segments touching the eye
// plane, or reaching far outside the screen, are skipped rather than
// clipped.
func (w *Wireframe) DrawLine3D(ctx ShadingContext, a, b math3d.Vec3, color uint32) {
	x0, y0, ok0 := w.project(ctx, a)
	x1, y1, ok1 := w.project(ctx, b)
	if !ok0 || !ok1 {
		return
	}
	limit := 4 * float32(max(w.fb.Width, w.fb.Height))
	for _, v := range [4]float32{x0, y0, x1, y1} {
		if math32.Abs(v) > limit {
			return
		}
	}
	w.fb.DrawLine(int(x0), int(y0), int(x1), int(y1), color)
}

// DrawMesh draws every triangle edge of mesh. Shared edges are drawn twice.
func (w *Wireframe) DrawMesh(mesh MeshRenderer, ctx ShadingContext, color uint32) {
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var p [3]math3d.Vec3
		for k, vi := range face {
			p[k], _, _ = mesh.GetVertex(vi)
		}
		w.DrawLine3D(ctx, p[0], p[1], color)
		w.DrawLine3D(ctx, p[1], p[2], color)
		w.DrawLine3D(ctx, p[2], p[0], color)
	}
}

// DrawBounds draws the 12 edges of a box.
func (w *Wireframe) DrawBounds(ctx ShadingContext, box AABB, color uint32) {
	var corners [8]math3d.Vec3
	for i := range corners {
		c := box.Min
		if i&1 != 0 {
			c.X = box.Max.X
		}
		if i&2 != 0 {
			c.Y = box.Max.Y
		}
		if i&4 != 0 {
			c.Z = box.Max.Z
		}
		corners[i] = c
	}
	// Corners differing in exactly one bit share an edge.
	for i := range corners {
		for _, bit := range [3]int{1, 2, 4} {
			if j := i | bit; j != i {
				w.DrawLine3D(ctx, corners[i], corners[j], color)
			}
		}
	}
}

// DrawAxes draws the model-space X, Y and Z axes from origin in red, green
// and blue.
func (w *Wireframe) DrawAxes(ctx ShadingContext, origin math3d.Vec3, length float32) {
	w.DrawLine3D(ctx, origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	w.DrawLine3D(ctx, origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	w.DrawLine3D(ctx, origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}
