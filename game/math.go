package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Float32ApproxEq determines whether two floating point numbers are close enough to each other
// by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// SafeNormalize normalizes the given vector, or returns the zero vector if its
// length is too small to normalize without blowing up.
func SafeNormalize(vec mgl32.Vec3) mgl32.Vec3 {
	lenSqr := vec.LenSqr()
	if lenSqr < 1e-12 {
		return mgl32.Vec3{}
	}
	return vec.Mul(1.0 / math32.Sqrt(lenSqr))
}

// ProjectOnPlane projects the given vector onto the plane described by its normal.
// The normal is assumed to be of unit length.
func ProjectOnPlane(vec, normal mgl32.Vec3) mgl32.Vec3 {
	return vec.Sub(normal.Mul(vec.Dot(normal)))
}

// ReorientOnPlane rescales the plane projection of vec so that it keeps its
// original length. Used to move along slopes without losing speed.
func ReorientOnPlane(vec, normal mgl32.Vec3) mgl32.Vec3 {
	projected := ProjectOnPlane(vec, normal)
	return SafeNormalize(projected).Mul(vec.Len())
}

// Clamp32 clamps val into the inclusive [min, max] range.
func Clamp32(val, min, max float32) float32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// SurfaceAngle returns the angle in degrees between a surface normal and up.
func SurfaceAngle(normal, up mgl32.Vec3) float32 {
	return mgl32.RadToDeg(math32.Acos(Clamp32(normal.Dot(up), -1, 1)))
}

// OrthoBasis derives a right/up tangent basis on the surface described by
// normal, using worldUp as the reference. Returns false if the normal is
// parallel to worldUp and no stable basis exists.
func OrthoBasis(normal, worldUp mgl32.Vec3) (right, up mgl32.Vec3, ok bool) {
	right = normal.Cross(worldUp)
	if right.LenSqr() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	right = SafeNormalize(right)
	up = right.Cross(normal)
	return right, SafeNormalize(up), true
}
