package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Packed colors used by the viewer and the wireframe overlay.
const (
	ColorBlack uint32 = 0x000000
	ColorWhite uint32 = 0xFFFFFF
	ColorRed   uint32 = 0xFF0000
	ColorGreen uint32 = 0x00FF00
	ColorBlue  uint32 = 0x0000FF
	ColorGray  uint32 = 0x808080
	ColorSky   uint32 = 0x87CEEB
)

// Draw converts the framebuffer to terminal cells and draws them on the
// screen. Each cell shows two framebuffer rows with an upper half block, so
// the framebuffer height should be 2x the terminal height.
//
// The framebuffer's top row lands on the first row of area.
func (fb *FrameBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	rows := (fb.Height + 1) / 2
	for row := area.Min.Y; row < area.Max.Y && row-area.Min.Y < rows; row++ {
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			top, bottom := fb.halfBlock(col-area.Min.X, row-area.Min.Y)
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: UnpackRGB(top),
					Bg: UnpackRGB(bottom),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// halfBlock returns the colors of the upper and lower half of terminal cell
// (x, row), counting rows from the top. The lower half of an odd final row
// falls outside the framebuffer and is black.
func (fb *FrameBuffer) halfBlock(x, row int) (top, bottom uint32) {
	y := fb.Height - 1 - 2*row
	return fb.Pixel(x, y), fb.Pixel(x, y-1)
}
