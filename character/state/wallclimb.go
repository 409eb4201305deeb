package state

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
)

// wallClimb clings to a wall whose normal was handed over by the wall
// detection collaborator. Movement happens in the wall's tangent space; after
// the cling duration expires the character slides down until it jumps off or
// lands. The cling timer lives on the state instance, which is why state sets
// are instantiated per character and never shared.
type wallClimb struct {
	clingTimer float32
	normal     mgl32.Vec3
}

func (*wallClimb) Type() character.StateType { return character.StateWallClimb }

func (w *wallClimb) Enter(ctx *character.Context) {
	w.clingTimer = ctx.Config.WallClingDuration
	w.normal = ctx.WallNormal
	ctx.VerticalVelocity = 0
}

func (w *wallClimb) Update(ctx *character.Context) mgl32.Vec3 {
	w.clingTimer -= ctx.DeltaTime

	// Hold the ground constraint open while clinging, or snapping would pull
	// the first few centimetres of a climb straight back to the floor.
	if ctx.GroundConstraintPause < 2 {
		ctx.GroundConstraintPause = 2
	}

	move := mgl32.Vec3{}
	if right, surfUp, ok := game.OrthoBasis(w.normal, ctx.WorldUp); ok {
		lateral := ctx.InputDirection.Dot(right)
		// Pressing into the wall climbs up it.
		climb := -ctx.InputDirection.Dot(w.normal)
		move = right.Mul(lateral * ctx.Config.WallClimbSpeed).
			Add(surfUp.Mul(climb * ctx.Config.WallClimbSpeed))
	}
	if w.clingTimer <= 0 {
		move = move.Sub(ctx.WorldUp.Mul(ctx.Config.WallSlideSpeed))
	}

	// A small adhesion displacement keeps the capsule pressed against the
	// wall; the resolver clips it at the surface.
	adhesion := w.normal.Mul(-ctx.Config.WallAdhesionForce)
	return move.Add(adhesion).Mul(ctx.DeltaTime)
}

func (w *wallClimb) Transition(ctx *character.Context) (character.StateType, bool) {
	if ctx.JumpPressed && ctx.ConsumeJumpPress() {
		w.jumpOff(ctx)
		return character.StateFall, true
	}
	// Only a fresh landing ends the climb; the stale grounded flag from the
	// wall's base would otherwise cancel the climb on its first tick.
	if ctx.IsGrounded && !ctx.WasGrounded {
		return character.StateIdle, true
	}
	return 0, false
}

// jumpOff applies the wall jump: an impulse aligned with the wall normal,
// tilted up along WorldUp.
func (w *wallClimb) jumpOff(ctx *character.Context) {
	impulse := game.SafeNormalize(w.normal.Add(ctx.WorldUp)).Mul(ctx.Config.WallJumpForce)
	ctx.VerticalVelocity = impulse.Dot(ctx.WorldUp)
	ctx.InheritedVelocity = game.ProjectOnPlane(impulse, ctx.WorldUp)
	ctx.NotifyJumpStarted()
}

func (w *wallClimb) Exit(ctx *character.Context) {
	w.clingTimer = 0
}
