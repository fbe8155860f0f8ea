// Package models provides triangle meshes, procedural shapes and loaders for
// OBJ and GLTF/GLB files.
package models

import (
	"image"
	"slices"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
//
// Front faces wind clockwise when seen from outside, which is the winding
// the rasterizer keeps after projection.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the file-level description of a surface. Colors are RGB in
// the 0..1 range.
type Material struct {
	Name      string
	Ambient   [3]float32
	Diffuse   [3]float32
	Specular  [3]float32
	Metallic  float32     // 0 = dielectric, 1 = metal
	Roughness float32     // 0 = smooth, 1 = rough
	BaseMap   image.Image // Optional base color texture
}

// HasTexture reports whether the material carries a base color texture.
func (m *Material) HasTexture() bool {
	return m.BaseMap != nil
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// faceNormal returns the outward normal of a clockwise face.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v2.Sub(v0).Cross(v1.Sub(v0))
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}
	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// hasNormals reports whether any vertex carries a usable normal.
func (m *Mesh) hasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer interface.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// GetMaterial returns the material at index i, or nil for -1 and out of
// range indices.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// Submesh is the subset of a mesh's faces sharing one material. It shares
// vertex storage and bounds with its mesh.
type Submesh struct {
	mesh     *Mesh
	faces    []int
	Material int // -1 for faces without a material
}

// Groups splits the faces by material, ordered by material index.
func (m *Mesh) Groups() []Submesh {
	byMat := make(map[int][]int)
	for i, f := range m.Faces {
		byMat[f.Material] = append(byMat[f.Material], i)
	}
	keys := make([]int, 0, len(byMat))
	for k := range byMat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]Submesh, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Submesh{mesh: m, faces: byMat[k], Material: k})
	}
	return groups
}

// VertexCount returns the vertex count of the parent mesh.
func (s Submesh) VertexCount() int { return s.mesh.VertexCount() }

// TriangleCount returns the number of faces in the group.
func (s Submesh) TriangleCount() int { return len(s.faces) }

// GetVertex returns vertex i of the parent mesh.
func (s Submesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	return s.mesh.GetVertex(i)
}

// GetFace returns the vertex indices of the i-th face in the group.
func (s Submesh) GetFace(i int) [3]int { return s.mesh.Faces[s.faces[i]].V }

// GetBounds returns the bounds of the parent mesh.
func (s Submesh) GetBounds() (min, max math3d.Vec3) { return s.mesh.GetBounds() }
