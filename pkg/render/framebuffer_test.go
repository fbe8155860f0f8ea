package render

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer(3, 2)
	fb.Depth[4] = 0.7
	fb.Clear(ColorSky)

	for _, c := range fb.Color {
		assert.Equal(t, ColorSky, c)
	}
	assert.Equal(t, make([]float32, 6), fb.Depth)
	assert.Panics(t, func() { NewFrameBuffer(0, 4) })
}

func TestFrameBufferPixelBounds(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(4, 0, ColorRed)
	fb.SetPixel(2, 3, ColorRed)

	assert.NotContains(t, fb.Color[:14], ColorRed)
	assert.Equal(t, ColorRed, fb.Pixel(2, 3))
	assert.Zero(t, fb.Pixel(9, 9))
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 1, 2, 4, 2, [][2]int{{1, 2}, {2, 2}, {3, 2}, {4, 2}}},
		{"vertical down", 3, 4, 3, 1, [][2]int{{3, 1}, {3, 2}, {3, 3}, {3, 4}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"single", 2, 2, 2, 2, [][2]int{{2, 2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFrameBuffer(6, 6)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)
			var got [][2]int
			for y := range fb.Height {
				for x := range fb.Width {
					if fb.Pixel(x, y) == ColorWhite {
						got = append(got, [2]int{x, y})
					}
				}
			}
			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestToImageFlipsRows(t *testing.T) {
	fb := NewFrameBuffer(2, 3)
	fb.SetPixel(0, 0, PackRGB(10, 20, 30)) // bottom left
	fb.SetPixel(1, 2, ColorBlue)            // top right

	img := fb.ToImage()
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, img.RGBAAt(0, 2))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(1, 1))
}

func TestSavePNG(t *testing.T) {
	fb := NewFrameBuffer(4, 2)
	fb.Clear(ColorGreen)
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, fb.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	r, g, b, _ := img.At(3, 1).RGBA()
	assert.Equal(t, [3]uint32{0, 0xFFFF, 0}, [3]uint32{r, g, b})

	assert.ErrorContains(t, fb.SavePNG(filepath.Join(t.TempDir(), "no", "such", "dir.png")), "create snapshot")
}

func TestHalfBlock(t *testing.T) {
	fb := NewFrameBuffer(2, 5)
	fb.SetPixel(0, 4, ColorRed)
	fb.SetPixel(0, 3, ColorGreen)
	fb.SetPixel(1, 0, ColorBlue)

	top, bottom := fb.halfBlock(0, 0)
	assert.Equal(t, ColorRed, top)
	assert.Equal(t, ColorGreen, bottom)

	// Odd height: the last cell's lower half is outside the buffer.
	top, bottom = fb.halfBlock(1, 2)
	assert.Equal(t, ColorBlue, top)
	assert.Equal(t, ColorBlack, bottom)
}

func TestPackUnpack(t *testing.T) {
	c := PackRGB(0x12, 0x34, 0x56)
	assert.Equal(t, uint32(0x123456), c)
	assert.Equal(t, color.RGBA{0x12, 0x34, 0x56, 0xFF}, UnpackRGB(c))
}
