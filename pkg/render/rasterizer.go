package render

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Rasterizer runs programs over triangles and meshes and writes the results
// into a framebuffer.
type Rasterizer struct {
	fb                     *FrameBuffer
	Stats                  DrawStats // Counters since the last ResetStats
	DisableBackfaceCulling bool      // If true, render both sides of triangles

	scratch ScreenTriangle
}

// DrawStats counts what happened to the meshes and triangles submitted since
// the last reset.
type DrawStats struct {
	MeshesTested int // Meshes with bounds tested against the frustum
	MeshesCulled int // Meshes rejected by the frustum test
	MeshesDrawn  int // Meshes that passed the frustum test

	Triangles      int // Triangles submitted
	BackfaceCulled int // Back-facing or zero-area triangles
	Behind         int // Triangles with a vertex at or behind the eye
	Offscreen      int // Triangles rejected by the screen bounds test
	Rasterized     int // Triangles scan-converted
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *FrameBuffer) *Rasterizer {
	return &Rasterizer{fb: fb}
}

// FrameBuffer returns the target framebuffer.
func (r *Rasterizer) FrameBuffer() *FrameBuffer {
	return r.fb
}

// SetFrameBuffer changes the target framebuffer, e.g. after a resize.
func (r *Rasterizer) SetFrameBuffer(fb *FrameBuffer) {
	r.fb = fb
}

// ResetStats resets the draw statistics (call once per frame).
func (r *Rasterizer) ResetStats() {
	r.Stats = DrawStats{}
}

// viewport maps a clip-space position to screen space. Y stays pointing up.
func (r *Rasterizer) viewport(clip math3d.Vec4) ScreenPoint {
	inv := 1 / clip.W
	return ScreenPoint{
		X:        (clip.X*inv + 1) * float32(r.fb.Width) * 0.5,
		Y:        (clip.Y*inv + 1) * float32(r.fb.Height) * 0.5,
		InvDepth: inv,
	}
}

// DrawTriangle runs p's vertex stage on v, culls back faces and scan-converts
// the result with p's pixel stage.
//
// Triangles with a vertex at or behind the eye (w <= 0) are dropped whole.
// It panics if the vertex stage writes a number of varyings other than
// p.VaryingCount().
func (r *Rasterizer) DrawTriangle(p Program, v [3]VertexIn) {
	r.Stats.Triangles++
	tri := &r.scratch
	want := p.VaryingCount()

	for i := range 3 {
		out := &tri.Varyings[i]
		out.Reset()
		clip := p.Vertex(v[i], out)
		if out.n != want {
			panic(fmt.Sprintf("render: vertex stage wrote %d varyings, program declares %d", out.n, want))
		}
		if clip.W <= 0 {
			r.Stats.Behind++
			return
		}
		tri.Points[i] = r.viewport(clip)
		out.scale(tri.Points[i].InvDepth)
	}

	p0, p1, p2 := tri.Points[0], tri.Points[1], tri.Points[2]
	area := math3d.V2(p1.X-p0.X, p1.Y-p0.Y).Cross(math3d.V2(p2.X-p0.X, p2.Y-p0.Y))
	// Front faces are clockwise on screen, which gives a negative area.
	if area == 0 || (area > 0 && !r.DisableBackfaceCulling) {
		r.Stats.BackfaceCulled++
		return
	}

	var level *Surface
	if tex := p.Texture(); tex != nil {
		lod := tex.SelectLOD(tri.Points, [3]math3d.Vec2{v[0].UV, v[1].UV, v[2].UV})
		level = tex.Level(int(lod))
	}

	if FillTriangle(r.fb, tri, p, level) {
		r.Stats.Rasterized++
	} else {
		r.Stats.Offscreen++
	}
}

// MeshRenderer is implemented by models.Mesh and models.Submesh.
// This interface allows drawing meshes without importing the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// tryFrustumCull reports whether mesh lies entirely outside the view volume
// of ctx. Meshes without bounds are never culled.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, ctx ShadingContext) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.Stats.MeshesTested++

	// Planes of the full matrix are in model space, so the local box is
	// tested as is.
	minBounds, maxBounds := bounded.GetBounds()
	if !NewFrustumFromMatrix(ctx.ProjViewWorld).IntersectAABB(AABB{Min: minBounds, Max: maxBounds}) {
		r.Stats.MeshesCulled++
		Logger().Debug("mesh outside frustum", "min", minBounds, "max", maxBounds)
		return true
	}

	r.Stats.MeshesDrawn++
	return false
}

// DrawMesh renders every face of mesh with p. ctx must be the context p was
// built from; it supplies the matrix for the frustum test. It reports
// whether the mesh was submitted, false when it was culled or empty.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, ctx ShadingContext, p Program) bool {
	n := mesh.TriangleCount()
	if n == 0 {
		Logger().Warn("skipping empty mesh")
		return false
	}
	if r.tryFrustumCull(mesh, ctx) {
		return false
	}

	var v [3]VertexIn
	for i := range n {
		face := mesh.GetFace(i)
		for k, vi := range face {
			v[k].Position, v[k].Normal, v[k].UV = mesh.GetVertex(vi)
		}
		r.DrawTriangle(p, v)
	}
	return true
}
