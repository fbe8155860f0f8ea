package render

import "github.com/taigrr/scanline/pkg/math3d"

// mipKernel is the 3x3 tent filter used to downsample each level.
var mipKernel = [3][3]float32{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// BuildMipChain returns base followed by successively halved levels until
// the smaller dimension reaches 1.
func BuildMipChain(base *Surface) []*Surface {
	chain := []*Surface{base}
	for cur := base; min(cur.Width, cur.Height) > 1; {
		cur = downsample(cur)
		chain = append(chain, cur)
	}
	return chain
}

// downsample filters src with mipKernel centred on every second texel.
// Taps falling outside src are dropped and the result is normalized by the
// weight of the taps that remain.
func downsample(src *Surface) *Surface {
	dst := NewSurface(max(src.Width/2, 1), max(src.Height/2, 1))
	for y := range dst.Height {
		for x := range dst.Width {
			cx, cy := 2*x, 2*y
			var sum math3d.Vec3
			var weight float32
			for ky := -1; ky <= 1; ky++ {
				sy := cy + ky
				if sy < 0 || sy >= src.Height {
					continue
				}
				for kx := -1; kx <= 1; kx++ {
					sx := cx + kx
					if sx < 0 || sx >= src.Width {
						continue
					}
					w := mipKernel[ky+1][kx+1]
					sum = sum.Add(src.At(sx, sy).Scale(w))
					weight += w
				}
			}
			dst.Set(x, y, sum.Scale(1/weight))
		}
	}
	return dst
}
