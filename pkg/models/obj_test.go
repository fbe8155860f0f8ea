package models

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scanline/pkg/math3d"
)

const quadOBJ = `# unit quad facing +Z
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJQuad(t *testing.T) {
	mesh, err := ReadOBJ(strings.NewReader(quadOBJ), "")
	require.NoError(t, err)

	require.Equal(t, 4, mesh.VertexCount())
	require.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, [3]int{0, 2, 1}, mesh.GetFace(0))
	assert.Equal(t, [3]int{0, 3, 2}, mesh.GetFace(1))
	assert.Equal(t, -1, mesh.Faces[0].Material)

	for i, f := range mesh.Faces {
		n := mesh.faceNormal(f).Normalize()
		assert.True(t, n.ApproxEqual(math3d.V3(0, 0, 1), 1e-6), "face %d normal %v", i, n)
	}
	_, normal, uv := mesh.GetVertex(2)
	assert.Equal(t, math3d.V3(0, 0, 1), normal)
	assert.Equal(t, math3d.V2(1, 1), uv)

	lo, hi := mesh.GetBounds()
	assert.Equal(t, math3d.Vec3{}, lo)
	assert.Equal(t, math3d.V3(1, 1, 0), hi)
}

func TestReadOBJVertexSharing(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 1
f -3/1 -2/1 -1/1
f 1/2 2/1 3/1
f 1 2 3
`
	mesh, err := ReadOBJ(strings.NewReader(src), "")
	require.NoError(t, err)

	// Relative indices resolve to the same vertices as absolute ones; a new
	// texcoord or a missing one makes a distinct vertex.
	assert.Equal(t, 7, mesh.VertexCount())
	assert.Equal(t, mesh.GetFace(0)[1], mesh.GetFace(1)[1])
	assert.NotEqual(t, mesh.GetFace(0)[0], mesh.GetFace(1)[0])

	// No vn lines: smooth normals are generated.
	_, n, _ := mesh.GetVertex(0)
	assert.True(t, n.ApproxEqual(math3d.V3(0, 0, 1), 1e-6), "got %v", n)
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"short vertex", "v 1 2\n", "want 3 values"},
		{"bad number", "v 1 x 3\n", "bad number"},
		{"degenerate face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "face has 2 vertices"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n", "index 2 out of range"},
		{"bad index", "v 0 0 0\nf 1 a 1\n", "bad index"},
		{"zero index", "v 0 0 0\nf 0 1 1\n", "out of range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tc.src), "")
			assert.ErrorContains(t, err, tc.want)
			assert.ErrorContains(t, err, "line ")
		})
	}
}

func TestLoadOBJMaterials(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	f, err := os.Create(filepath.Join(dir, "skin.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	mtl := `newmtl plain
Ka 0.1 0.1 0.1
Kd 0.5 0.25 1
Ks 1 1 1
newmtl skin
Kd 1 1 1
map_Kd skin.png
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "box.mtl"), []byte(mtl), 0o644))

	obj := `mtllib box.mtl
v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
usemtl skin
f 1 2 3
usemtl plain
f 2 4 3
usemtl missing
f 1 2 4
`
	path := filepath.Join(dir, "box.obj")
	require.NoError(t, os.WriteFile(path, []byte(obj), 0o644))

	mesh, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Equal(t, "box.obj", mesh.Name)
	require.Len(t, mesh.Materials, 2)

	plain := mesh.GetMaterial(0)
	assert.Equal(t, "plain", plain.Name)
	assert.Equal(t, [3]float32{0.1, 0.1, 0.1}, plain.Ambient)
	assert.Equal(t, [3]float32{0.5, 0.25, 1}, plain.Diffuse)
	assert.Equal(t, [3]float32{1, 1, 1}, plain.Specular)
	assert.False(t, plain.HasTexture())
	assert.True(t, mesh.GetMaterial(1).HasTexture())

	assert.Equal(t, []int{1, 0, -1}, []int{mesh.Faces[0].Material, mesh.Faces[1].Material, mesh.Faces[2].Material})
	assert.Nil(t, mesh.GetMaterial(-1))
	assert.Nil(t, mesh.GetMaterial(2))
}

func TestLoadOBJErrors(t *testing.T) {
	_, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.obj")
	require.NoError(t, os.WriteFile(path, []byte("mtllib nope.mtl\n"), 0o644))
	_, err = LoadOBJ(path)
	assert.ErrorContains(t, err, "open mtl")
	assert.ErrorContains(t, err, "broken.obj")
}
