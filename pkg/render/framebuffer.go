// Package render implements a CPU scanline rasterizer with programmable
// vertex and pixel stages, mipmapped texture sampling and terminal output.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// FrameBuffer holds the packed color and inverse-depth buffers of a frame.
//
// Row 0 is the bottom scanline. Colors are packed as 0x00RRGGBB. Depth stores
// 1/w, so larger values are nearer and 0 means infinitely far.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint32
	Depth  []float32
}

// NewFrameBuffer creates a framebuffer with the given dimensions.
// For half-block terminal output the height should be 2x the terminal rows.
func NewFrameBuffer(width, height int) *FrameBuffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("render: invalid framebuffer size %dx%d", width, height))
	}
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Color:  make([]uint32, width*height),
		Depth:  make([]float32, width*height),
	}
}

// Clear fills the color buffer and resets every depth to 0.
func (fb *FrameBuffer) Clear(c uint32) {
	for i := range fb.Color {
		fb.Color[i] = c
	}
	clear(fb.Depth)
}

// SetPixel sets the pixel at (x, y) without touching depth.
// Out of range coordinates are ignored.
func (fb *FrameBuffer) SetPixel(x, y int, c uint32) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Color[y*fb.Width+x] = c
}

// Pixel returns the packed color at (x, y), or 0 if out of range.
func (fb *FrameBuffer) Pixel(x, y int) uint32 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return 0
	}
	return fb.Color[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *FrameBuffer) DrawLine(x0, y0, x1, y1 int, c uint32) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the color buffer to an image.RGBA, flipping rows so the
// bottom scanline ends up at the bottom of the image.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		row := fb.Color[y*fb.Width : (y+1)*fb.Width]
		dst := img.Pix[(fb.Height-1-y)*img.Stride:]
		for x, c := range row {
			dst[x*4+0] = uint8(c >> 16)
			dst[x*4+1] = uint8(c >> 8)
			dst[x*4+2] = uint8(c)
			dst[x*4+3] = 0xFF
		}
	}
	return img
}

// SavePNG saves the color buffer as a PNG file.
func (fb *FrameBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// PackRGB packs 8-bit channels into 0x00RRGGBB.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackRGB converts a packed color to an opaque color.RGBA.
func UnpackRGB(c uint32) color.RGBA {
	return color.RGBA{uint8(c >> 16), uint8(c >> 8), uint8(c), 0xFF}
}
