package render

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Cube face indices.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Cubemap is an environment map made of six textures.
type Cubemap struct {
	Faces [6]*Texture
}

// NewCubemap creates a cubemap from six faces ordered +X, -X, +Y, -Y, +Z, -Z.
func NewCubemap(faces [6]*Texture) *Cubemap {
	for i, f := range faces {
		if f == nil {
			panic(fmt.Sprintf("render: cubemap face %d is nil", i))
		}
	}
	return &Cubemap{Faces: faces}
}

// LoadCubemap loads six face images ordered +X, -X, +Y, -Y, +Z, -Z.
func LoadCubemap(paths [6]string) (*Cubemap, error) {
	var faces [6]*Texture
	for i, p := range paths {
		tex, err := LoadTexture(p)
		if err != nil {
			return nil, fmt.Errorf("load cubemap face %d: %w", i, err)
		}
		faces[i] = tex
	}
	return NewCubemap(faces), nil
}

// Sample returns the bilinear sample of the finest level of the face the
// direction dir points into. A zero direction yields black.
func (c *Cubemap) Sample(dir math3d.Vec3) math3d.Vec3 {
	face, uv, ok := cubeFaceUV(dir)
	if !ok {
		return math3d.Vec3{}
	}
	return c.Faces[face].Level(0).Tex2DBilinear(uv)
}

// cubeFaceUV selects the face along the dominant axis of dir and projects dir
// onto it.
func cubeFaceUV(dir math3d.Vec3) (int, math3d.Vec2, bool) {
	dir = dir.Normalize()
	a := dir.Abs()
	var face int
	var sc, tc, ma float32
	switch {
	case a.X > a.Z && a.X > a.Y:
		ma = a.X
		if dir.X > 0 {
			face, sc, tc = FacePosX, -dir.Z, dir.Y
		} else {
			face, sc, tc = FaceNegX, dir.Z, dir.Y
		}
	case a.Y > a.Z:
		ma = a.Y
		if dir.Y > 0 {
			face, sc, tc = FacePosY, dir.X, -dir.Z
		} else {
			face, sc, tc = FaceNegY, dir.X, dir.Z
		}
	default:
		ma = a.Z
		if dir.Z > 0 {
			face, sc, tc = FacePosZ, dir.X, dir.Y
		} else {
			face, sc, tc = FaceNegZ, -dir.X, dir.Y
		}
	}
	if ma == 0 || math32.IsNaN(ma) {
		return 0, math3d.Vec2{}, false
	}
	return face, math3d.V2((sc/ma+1)/2, (tc/ma+1)/2), true
}
