package render

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MaxVaryings is the capacity of a Varyings buffer in float32 values.
const MaxVaryings = 16

// Varyings is the fixed-capacity buffer a vertex stage writes its outputs to
// and a pixel stage reads its interpolated inputs from.
//
// Writers append at the cursor; readers address values by index, so a pixel
// stage reads the layout its paired vertex stage wrote.
type Varyings struct {
	v [MaxVaryings]float32
	n int
}

// Reset empties the buffer.
func (v *Varyings) Reset() {
	v.n = 0
}

// Len returns the number of values written.
func (v *Varyings) Len() int {
	return v.n
}

// PutFloat appends one value.
func (v *Varyings) PutFloat(f float32) {
	v.grow(1)
	v.v[v.n] = f
	v.n++
}

// PutVec2 appends two values.
func (v *Varyings) PutVec2(a math3d.Vec2) {
	v.grow(2)
	v.v[v.n] = a.X
	v.v[v.n+1] = a.Y
	v.n += 2
}

// PutVec3 appends three values.
func (v *Varyings) PutVec3(a math3d.Vec3) {
	v.grow(3)
	v.v[v.n] = a.X
	v.v[v.n+1] = a.Y
	v.v[v.n+2] = a.Z
	v.n += 3
}

// Float returns the value at index i.
func (v *Varyings) Float(i int) float32 {
	return v.v[i]
}

// Vec2 returns the two values starting at index i.
func (v *Varyings) Vec2(i int) math3d.Vec2 {
	return math3d.Vec2{X: v.v[i], Y: v.v[i+1]}
}

// Vec3 returns the three values starting at index i.
func (v *Varyings) Vec3(i int) math3d.Vec3 {
	return math3d.Vec3{X: v.v[i], Y: v.v[i+1], Z: v.v[i+2]}
}

// scale multiplies every written value by s.
func (v *Varyings) scale(s float32) {
	for i := range v.n {
		v.v[i] *= s
	}
}

func (v *Varyings) grow(k int) {
	if v.n+k > MaxVaryings {
		panic(fmt.Sprintf("render: varyings overflow: %d values exceed capacity %d", v.n+k, MaxVaryings))
	}
}
