// Package camera provides look-at perspective cameras and a store that
// tracks which one is active.
package camera

import (
	"math"

	"github.com/taigrr/sloth/pkg/math3d"
)

// Camera is a look-at camera. Matrices are derived from the fields on every
// call, so edits take effect on the next frame.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	// Projection parameters
	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64 // Near clipping plane
	Far    float64 // Far clipping plane
}

// New creates a camera at position looking at target with default
// projection settings.
func New(position, target math3d.Vec3) *Camera {
	return &Camera{
		Position: position,
		Target:   target,
		Up:       math3d.Up(),
		FOV:      math.Pi / 3, // 60 degrees
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
	}
}

// ViewMatrix returns the right-handed look-at view matrix.
// A zero-length forward vector or one parallel to Up yields a degenerate
// matrix; the camera does not guard against it.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection × view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Forward returns the unit direction from Position to Target.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}

// MoveForward moves the camera and its target along Forward.
func (c *Camera) MoveForward(distance float64) {
	c.translate(c.Forward().Scale(distance))
}

// MoveRight moves the camera and its target along Right.
func (c *Camera) MoveRight(distance float64) {
	c.translate(c.Right().Scale(distance))
}

// MoveUp moves the camera and its target along Up.
func (c *Camera) MoveUp(distance float64) {
	c.translate(c.Up.Normalize().Scale(distance))
}

func (c *Camera) translate(d math3d.Vec3) {
	c.Position = c.Position.Add(d)
	c.Target = c.Target.Add(d)
}

// Orbit places the camera on a sphere around Target. yaw rotates about the
// world Y axis, pitch lifts toward +Y; pitch is clamped short of the poles.
func (c *Camera) Orbit(yaw, pitch, distance float64) {
	const maxPitch = math.Pi/2 - 0.01
	pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))

	offset := math3d.V3(
		distance*math.Cos(pitch)*math.Sin(yaw),
		distance*math.Sin(pitch),
		distance*math.Cos(pitch)*math.Cos(yaw),
	)
	c.Position = c.Target.Add(offset)
}

// OrbitAngles returns the yaw, pitch and distance that Orbit would need to
// reproduce the current Position.
func (c *Camera) OrbitAngles() (yaw, pitch, distance float64) {
	offset := c.Position.Sub(c.Target)
	distance = offset.Len()
	if distance == 0 {
		return 0, 0, 0
	}
	return math.Atan2(offset.X, offset.Z), math.Asin(offset.Y / distance), distance
}

// WorldToScreen transforms a world point to screen coordinates with the
// same viewport mapping the rasterizer uses.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Check if behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x, y = math3d.Viewport(ndc, screenWidth, screenHeight)
	return x, y, ndc.Z, true
}
