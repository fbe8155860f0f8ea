package render

import (
	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Camera orbits a target point. Its position is derived from the target,
// the distance and two angles.
type Camera struct {
	// Target is the point the camera looks at.
	Target math3d.Vec3

	// Orbit parameters
	Distance float32
	Yaw      float32 // Rotation around the Y axis, 0 looks down -Z
	Pitch    float32 // Elevation above the XZ plane

	// Projection parameters
	FOV    float32 // Vertical field of view in radians
	Aspect float32 // Width / Height
	Near   float32 // Near clipping plane
	Far    float32 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
	viewDirty  bool
	projDirty  bool
}

// maxPitch keeps the camera off the poles, where LookAt's up vector degenerates.
const maxPitch = math32.Pi/2 - 0.01

// NewCamera creates a camera 5 units in front of the origin with a 60° FOV.
func NewCamera() *Camera {
	return &Camera{
		Distance:  5,
		FOV:       math32.Pi / 3,
		Aspect:    1,
		Near:      0.1,
		Far:       100,
		viewDirty: true,
		projDirty: true,
	}
}

// Position returns the camera position in world space.
func (c *Camera) Position() math3d.Vec3 {
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	offset := math3d.V3(sy*cp, sp, cy*cp).Scale(c.Distance)
	return c.Target.Add(offset)
}

// SetTarget sets the orbit centre.
func (c *Camera) SetTarget(t math3d.Vec3) {
	c.Target = t
	c.viewDirty = true
}

// SetOrbit sets distance, yaw and pitch at once. Pitch is clamped.
func (c *Camera) SetOrbit(distance, yaw, pitch float32) {
	c.Distance = max(distance, c.Near)
	c.Yaw = yaw
	c.Pitch = math3d.Clamp(pitch, -maxPitch, maxPitch)
	c.viewDirty = true
}

// Orbit rotates the camera around the target by the given angles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	c.SetOrbit(c.Distance, c.Yaw+deltaYaw, c.Pitch+deltaPitch)
}

// Zoom multiplies the orbit distance by factor.
func (c *Camera) Zoom(factor float32) {
	c.SetOrbit(c.Distance*factor, c.Yaw, c.Pitch)
}

// SetAspect sets the aspect ratio.
func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.projDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float32) {
	c.FOV = fov
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float32) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Frame points the camera at the centre of a box and backs off until the
// whole box fits the vertical field of view.
func (c *Camera) Frame(minBounds, maxBounds math3d.Vec3) {
	c.SetTarget(minBounds.Add(maxBounds).Scale(0.5))
	radius := maxBounds.Sub(minBounds).Len() / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / math32.Sin(c.FOV/2)
	c.SetClipPlanes(dist/100, dist+radius*4)
	c.SetOrbit(dist, c.Yaw, c.Pitch)
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// Context builds the shading context for an object placed by world and lit
// by a directional light travelling along lightDir.
func (c *Camera) Context(world math3d.Mat4, lightDir math3d.Vec3) ShadingContext {
	return NewShadingContext(c.ProjectionMatrix(), c.ViewMatrix(), world, lightDir, c.Position())
}
