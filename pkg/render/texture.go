package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/scanline/pkg/math3d"
)

// Surface is a 2D grid of RGB values in the 0..255 range.
// Row 0 is the bottom row, so v=0 addresses the bottom of the image.
type Surface struct {
	Width  int
	Height int
	Pixels []math3d.Vec3
}

// NewSurface creates a black surface with the given dimensions.
func NewSurface(width, height int) *Surface {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("render: invalid surface size %dx%d", width, height))
	}
	return &Surface{
		Width:  width,
		Height: height,
		Pixels: make([]math3d.Vec3, width*height),
	}
}

// At returns the texel at (x, y). Coordinates must be in range.
func (s *Surface) At(x, y int) math3d.Vec3 {
	return s.Pixels[y*s.Width+x]
}

// Set stores the texel at (x, y). Coordinates must be in range.
func (s *Surface) Set(x, y int, c math3d.Vec3) {
	s.Pixels[y*s.Width+x] = c
}

// Tex2D samples the nearest texel, wrapping uv outside [0,1).
func (s *Surface) Tex2D(uv math3d.Vec2) math3d.Vec3 {
	x := wrap(int(math32.Floor(uv.X*float32(s.Width))), s.Width)
	y := wrap(int(math32.Floor(uv.Y*float32(s.Height))), s.Height)
	return s.Pixels[y*s.Width+x]
}

// Tex2DBilinear blends the four texels around uv. The right and top
// neighbours wrap around the surface edges.
func (s *Surface) Tex2DBilinear(uv math3d.Vec2) math3d.Vec3 {
	fx := uv.X * float32(s.Width)
	fy := uv.Y * float32(s.Height)
	flx := math32.Floor(fx)
	fly := math32.Floor(fy)
	tx := fx - flx
	ty := fy - fly

	x0 := wrap(int(flx), s.Width)
	y0 := wrap(int(fly), s.Height)
	x1 := x0 + 1
	if x1 == s.Width {
		x1 = 0
	}
	y1 := y0 + 1
	if y1 == s.Height {
		y1 = 0
	}

	bottom := s.At(x0, y0).Lerp(s.At(x1, y0), tx)
	top := s.At(x0, y1).Lerp(s.At(x1, y1), tx)
	return bottom.Lerp(top, ty)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Texture is a mip chain. Level 0 is the full resolution surface and each
// following level halves both dimensions.
type Texture struct {
	levels []*Surface
}

// NewTexture builds the full mip chain for base.
func NewTexture(base *Surface) *Texture {
	levels := BuildMipChain(base)
	Logger().Debug("texture mip chain built",
		"width", base.Width, "height", base.Height, "levels", len(levels))
	return &Texture{levels: levels}
}

// Levels returns the number of mip levels.
func (t *Texture) Levels() int {
	return len(t.levels)
}

// MaxLevel returns the index of the smallest mip level.
func (t *Texture) MaxLevel() int {
	return len(t.levels) - 1
}

// Level returns mip level i. It panics if i is out of range.
func (t *Texture) Level(i int) *Surface {
	if i < 0 || i >= len(t.levels) {
		panic(fmt.Sprintf("render: mip level %d out of range [0,%d]", i, len(t.levels)-1))
	}
	return t.levels[i]
}

// SelectLOD returns the level of detail for a screen triangle p with texture
// coordinates uv, derived from the ratio of its texel area to its pixel
// area and clamped to [0, MaxLevel].
func (t *Texture) SelectLOD(p [3]ScreenPoint, uv [3]math3d.Vec2) float32 {
	maxLevel := float32(t.MaxLevel())
	pixelArea := math32.Abs(math3d.V2(p[1].X-p[0].X, p[1].Y-p[0].Y).
		Cross(math3d.V2(p[2].X-p[0].X, p[2].Y-p[0].Y)))
	if pixelArea == 0 {
		return maxLevel
	}
	base := t.levels[0]
	texelArea := math32.Abs(uv[1].Sub(uv[0]).Cross(uv[2].Sub(uv[0]))) *
		float32(base.Width) * float32(base.Height)

	lod := math32.Log2(math32.Sqrt(texelArea / pixelArea))
	return math3d.Clamp(lod, 0, maxLevel)
}

// LoadTexture decodes an image file (PNG, JPEG, BMP, TIFF or WebP) and
// builds its mip chain.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage converts img to a mipmapped texture. Image row 0 (the top)
// becomes the last surface row.
func TextureFromImage(img image.Image) *Texture {
	return NewTexture(SurfaceFromImage(img))
}

// SurfaceFromImage converts img to a surface, flipping rows so the bottom of
// the image is surface row 0.
func SurfaceFromImage(img image.Image) *Surface {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	s := NewSurface(b.Dx(), b.Dy())
	for y := range s.Height {
		src := rgba.Pix[(s.Height-1-y)*rgba.Stride:]
		for x := range s.Width {
			p := src[x*4:]
			s.Pixels[y*s.Width+x] = math3d.V3(float32(p[0]), float32(p[1]), float32(p[2]))
		}
	}
	return s
}

// NewCheckerSurface creates a procedural checkerboard surface.
func NewCheckerSurface(width, height, checkSize int, c1, c2 math3d.Vec3) *Surface {
	s := NewSurface(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				s.Set(x, y, c1)
			} else {
				s.Set(x, y, c2)
			}
		}
	}
	return s
}
