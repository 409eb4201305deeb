package state

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
)

// airDisplacement integrates gravity into the vertical velocity, then combines
// the air-control-scaled input with any inherited velocity. Gravity integrates
// before the displacement is computed, always.
func airDisplacement(ctx *character.Context) mgl32.Vec3 {
	ctx.VerticalVelocity -= ctx.Config.Gravity * ctx.DeltaTime

	dir := game.SafeNormalize(ctx.HorizontalInput())
	input := dir.Mul(ctx.Config.WalkSpeed * ctx.Config.AirControl)
	horizontal := combineDominant(ctx.InheritedVelocity, input)

	vel := horizontal.Add(ctx.WorldUp.Mul(ctx.VerticalVelocity))
	return vel.Mul(ctx.DeltaTime)
}

// combineDominant adds two velocities but caps the result's magnitude at the
// larger of the two, so input steering can redirect inherited momentum without
// stacking on top of it.
func combineDominant(a, b mgl32.Vec3) mgl32.Vec3 {
	sum := a.Add(b)
	limit := math32.Max(a.Len(), b.Len())
	if limit <= 0 {
		return mgl32.Vec3{}
	}
	if sum.Len() > limit {
		sum = game.SafeNormalize(sum).Mul(limit)
	}
	return sum
}

// applyJump applies a jump impulse along WorldUp. The impulse requires an open
// jump count and a successfully consumed press; a requested transition into
// Jump without either enters the state inert and falls out on its next tick.
func applyJump(ctx *character.Context) {
	if !ctx.CanJump() || !ctx.ConsumeJumpPress() {
		return
	}
	ctx.JumpCount++
	ctx.VerticalVelocity = ctx.Config.JumpForce
	ctx.NotifyJumpStarted()
}

// jump is the ascending state. Additional presses while ascending re-apply the
// jump impulse until the jump count limit, each consuming its press
// immediately so one press never triggers twice within a tick.
type jump struct{}

func (*jump) Type() character.StateType { return character.StateJump }

func (*jump) Enter(ctx *character.Context) {
	applyJump(ctx)
}

func (*jump) Update(ctx *character.Context) mgl32.Vec3 {
	if ctx.JumpPressed && ctx.CanJump() {
		applyJump(ctx)
	}
	return airDisplacement(ctx)
}

func (*jump) Transition(ctx *character.Context) (character.StateType, bool) {
	if ctx.IsGrounded && ctx.VerticalVelocity <= 0 {
		return character.StateIdle, true
	}
	if ctx.VerticalVelocity <= 0 {
		return character.StateFall, true
	}
	return 0, false
}

func (*jump) Exit(ctx *character.Context) {}

// fall integrates gravity with air-controlled steering and lands back into the
// locomotion set. A mid-air jump press re-enters Jump while under the count
// limit.
type fall struct{}

func (*fall) Type() character.StateType    { return character.StateFall }
func (*fall) Enter(ctx *character.Context) {}

func (*fall) Update(ctx *character.Context) mgl32.Vec3 {
	return airDisplacement(ctx)
}

func (*fall) Transition(ctx *character.Context) (character.StateType, bool) {
	if ctx.IsGrounded && ctx.VerticalVelocity <= 0 {
		return character.StateIdle, true
	}
	if ctx.JumpPressed && ctx.CanJump() {
		return character.StateJump, true
	}
	return 0, false
}

func (*fall) Exit(ctx *character.Context) {}
