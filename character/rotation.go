package character

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/game"
)

// smoothRotation turns the character's visual orientation towards its travel
// direction at the configured rate. Runs on the variable-rate tick only.
func (c *Character) smoothRotation(dt float32) {
	ctx := c.ctx
	travel := game.ProjectOnPlane(ctx.CurrentVelocity, ctx.WorldUp)
	if travel.LenSqr() < 1e-6 {
		return
	}

	target := facingQuat(game.SafeNormalize(travel), ctx.WorldUp)
	maxStep := mgl32.DegToRad(ctx.Config.RotationSpeed) * dt

	angle := quatAngle(ctx.Orientation, target)
	if angle <= maxStep || angle < 1e-5 {
		ctx.Orientation = target
		return
	}
	ctx.Orientation = mgl32.QuatSlerp(ctx.Orientation, target, maxStep/angle)
}

// facingQuat builds the orientation looking along forward with the given up.
func facingQuat(forward, up mgl32.Vec3) mgl32.Quat {
	right := game.SafeNormalize(up.Cross(forward))
	if right.LenSqr() == 0 {
		return mgl32.QuatIdent()
	}
	orthoUp := forward.Cross(right)
	m := mgl32.Mat3FromCols(right, orthoUp, forward)
	return mgl32.Mat4ToQuat(m.Mat4())
}

// quatAngle returns the rotation angle between two orientations, in radians.
func quatAngle(a, b mgl32.Quat) float32 {
	dot := game.Clamp32(math32.Abs(a.Dot(b)), 0, 1)
	return 2 * math32.Acos(dot)
}
