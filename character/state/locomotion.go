package state

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
)

// deadZone is the input magnitude under which locomotion input is ignored.
const deadZone = 0.05

// pickLocomotion selects the grounded state matching the current input and
// held modifiers. Crouch wins over sprint, sprint over run.
func pickLocomotion(ctx *character.Context) character.StateType {
	if ctx.CrouchHeld {
		return character.StateCrouch
	}
	if ctx.HorizontalInput().Len() < deadZone {
		return character.StateIdle
	}
	if ctx.SprintHeld {
		return character.StateSprint
	}
	if ctx.RunHeld {
		return character.StateRun
	}
	return character.StateWalk
}

// groundedTransition holds the transition rules shared by every grounded
// state: fall when support is lost, jump on a press, otherwise interchange
// within the locomotion set.
func groundedTransition(ctx *character.Context, self character.StateType) (character.StateType, bool) {
	if !ctx.IsGrounded {
		return character.StateFall, true
	}
	if ctx.JumpPressed && ctx.CanJump() {
		return character.StateJump, true
	}
	if pick := pickLocomotion(ctx); pick != self {
		return pick, true
	}
	return 0, false
}

// groundedDisplacement moves along the normalized horizontal input at the
// given speed. Reorienting onto the ground plane is the resolver's job.
func groundedDisplacement(ctx *character.Context, speed float32) mgl32.Vec3 {
	dir := game.SafeNormalize(ctx.HorizontalInput())
	return dir.Mul(speed * ctx.DeltaTime)
}

type idle struct{}

func (idle) Type() character.StateType { return character.StateIdle }
func (idle) Enter(ctx *character.Context) {}
func (idle) Exit(ctx *character.Context)  {}

func (idle) Update(*character.Context) mgl32.Vec3 { return mgl32.Vec3{} }

func (idle) Transition(ctx *character.Context) (character.StateType, bool) {
	return groundedTransition(ctx, character.StateIdle)
}

type walk struct{}

func (walk) Type() character.StateType    { return character.StateWalk }
func (walk) Enter(ctx *character.Context) {}
func (walk) Exit(ctx *character.Context)  {}

func (walk) Update(ctx *character.Context) mgl32.Vec3 {
	return groundedDisplacement(ctx, ctx.Config.WalkSpeed)
}

func (walk) Transition(ctx *character.Context) (character.StateType, bool) {
	return groundedTransition(ctx, character.StateWalk)
}

type run struct{}

func (run) Type() character.StateType    { return character.StateRun }
func (run) Enter(ctx *character.Context) {}
func (run) Exit(ctx *character.Context)  {}

func (run) Update(ctx *character.Context) mgl32.Vec3 {
	return groundedDisplacement(ctx, ctx.Config.RunSpeed)
}

func (run) Transition(ctx *character.Context) (character.StateType, bool) {
	return groundedTransition(ctx, character.StateRun)
}

type sprint struct{}

func (sprint) Type() character.StateType    { return character.StateSprint }
func (sprint) Enter(ctx *character.Context) {}
func (sprint) Exit(ctx *character.Context)  {}

func (sprint) Update(ctx *character.Context) mgl32.Vec3 {
	return groundedDisplacement(ctx, ctx.Config.SprintSpeed)
}

func (sprint) Transition(ctx *character.Context) (character.StateType, bool) {
	return groundedTransition(ctx, character.StateSprint)
}

type crouch struct{}

func (crouch) Type() character.StateType    { return character.StateCrouch }
func (crouch) Enter(ctx *character.Context) {}
func (crouch) Exit(ctx *character.Context)  {}

func (crouch) Update(ctx *character.Context) mgl32.Vec3 {
	return groundedDisplacement(ctx, ctx.Config.CrouchSpeed)
}

func (crouch) Transition(ctx *character.Context) (character.StateType, bool) {
	if !ctx.IsGrounded {
		return character.StateFall, true
	}
	if ctx.JumpPressed && ctx.CanJump() && !ctx.CrouchHeld {
		return character.StateJump, true
	}
	if !ctx.CrouchHeld {
		return pickLocomotion(ctx), true
	}
	return 0, false
}
