package models

import "github.com/taigrr/scanline/pkg/math3d"

// addQuad appends a quad centred at c spanning ±u and ±v. u×v must point
// outward; the quad is split into two clockwise faces. UVs span [0,repeat].
func (m *Mesh) addQuad(c, u, v math3d.Vec3, repeat float32, material int) {
	n := u.Cross(v).Normalize()
	base := len(m.Vertices)
	corners := [4]struct {
		su, sv float32
	}{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, k := range corners {
		m.Vertices = append(m.Vertices, MeshVertex{
			Position: c.Add(u.Scale(k.su)).Add(v.Scale(k.sv)),
			Normal:   n,
			UV:       math3d.V2((k.su+1)/2*repeat, (k.sv+1)/2*repeat),
		})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 2, base + 1}, Material: material},
		Face{V: [3]int{base, base + 3, base + 2}, Material: material},
	)
}

// NewCube creates an axis-aligned cube of the given edge length centred on
// the origin, with one texture tile per face.
func NewCube(size float32) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	faces := [6]struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
	}
	for _, f := range faces {
		m.addQuad(f.n.Scale(h), f.u.Scale(h), f.v.Scale(h), 1, -1)
	}
	m.CalculateBounds()
	return m
}

// NewPlane creates a square in the XZ plane facing +Y, split into
// segments×segments quads. The texture repeats repeat times across it.
func NewPlane(size float32, segments int, repeat float32) *Mesh {
	segments = max(segments, 1)
	m := NewMesh("plane")
	cell := size / float32(segments)
	half := cell / 2
	tile := repeat / float32(segments)
	for j := range segments {
		for i := range segments {
			c := math3d.V3(
				-size/2+(float32(i)+0.5)*cell,
				0,
				size/2-(float32(j)+0.5)*cell,
			)
			base := len(m.Vertices)
			m.addQuad(c, math3d.V3(half, 0, 0), math3d.V3(0, 0, -half), 1, -1)
			// shift the quad's UVs to its cell
			for k := base; k < len(m.Vertices); k++ {
				uv := m.Vertices[k].UV
				m.Vertices[k].UV = math3d.V2((float32(i)+uv.X)*tile, (float32(j)+uv.Y)*tile)
			}
		}
	}
	m.CalculateBounds()
	return m
}
