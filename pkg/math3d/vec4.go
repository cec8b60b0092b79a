package math3d

// Vec4 represents a homogeneous 3D point.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide returns X, Y and Z divided by W.
// W == 0 is not trapped: the result carries the resulting infinities or NaNs
// so callers can reject the point.
func (v Vec4) PerspectiveDivide() Vec3 {
	return Vec3{v.X / v.W, v.Y / v.W, v.Z / v.W}
}

// Viewport maps NDC x and y onto a width×height pixel grid with a
// bottom-left origin. NDC -1 lands on pixel coordinate 0.5.
func Viewport(ndc Vec3, width, height int) (x, y float64) {
	x = (ndc.X+1)*float64(width)/2 + 0.5
	y = (ndc.Y+1)*float64(height)/2 + 0.5
	return x, y
}
