package character

import (
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/game"
)

// Tick advances the character by one fixed-rate simulation step. The order is
// fixed for determinism: ground detection, platform update, state machine,
// collision resolution, pending forces, platform re-cache.
func (c *Character) Tick(dt float32) {
	defer c.recoverTick()

	if dt <= 0 || c.active == nil || c.resolver == nil {
		return
	}

	ctx := c.ctx
	ctx.DeltaTime = dt
	ctx.WasGrounded = ctx.IsGrounded

	c.resolver.DetectGround(ctx)

	if c.platform != nil {
		c.platform.PreMove(ctx)
	}

	desired := c.desiredDisplacement()

	if next, ok := c.active.Transition(ctx); ok {
		c.setState(next)
	}

	actual := c.resolver.Move(ctx, desired)
	if dt > 0 {
		ctx.CurrentVelocity = actual.Mul(1 / dt)
		ctx.CurrentSpeed = game.ProjectOnPlane(ctx.CurrentVelocity, ctx.WorldUp).Len()
	}

	c.applyPendingImpulse()

	if c.platform != nil {
		c.platform.PostMove(ctx)
	}

	c.writeAnimParams()

	if ctx.GroundConstraintPause > 0 {
		ctx.GroundConstraintPause--
	}
	if ctx.jumpDelay > 0 {
		ctx.jumpDelay--
	}
}

// desiredDisplacement selects this tick's displacement provider: root motion
// when enabled and a delta is available, otherwise the active state's output.
func (c *Character) desiredDisplacement() mgl32.Vec3 {
	ctx := c.ctx
	if ctx.UseRootMotion && ctx.RootMotionDelta.LenSqr() > 0 {
		delta := ctx.RootMotionDelta
		ctx.RootMotionDelta = mgl32.Vec3{}
		return delta
	}
	return c.active.Update(ctx)
}

// applyPendingImpulse folds accumulated impulses into the velocity model:
// the WorldUp component into VerticalVelocity, the rest into the inherited
// horizontal air velocity.
func (c *Character) applyPendingImpulse() {
	ctx := c.ctx
	if ctx.PendingImpulse.LenSqr() == 0 {
		return
	}
	ctx.VerticalVelocity += ctx.PendingImpulse.Dot(ctx.WorldUp)
	ctx.InheritedVelocity = ctx.InheritedVelocity.Add(game.ProjectOnPlane(ctx.PendingImpulse, ctx.WorldUp))
	ctx.PendingImpulse = mgl32.Vec3{}
	if ctx.VerticalVelocity > 0 && c.active != nil && c.active.Type().Grounded() {
		c.setState(StateFall)
	}
}

// VisualTick runs the variable-rate cosmetic pass: rotation smoothing and the
// moving platform catch-up translation. It never invokes collision queries, so
// the fixed tick's authoritative state stays untouched.
func (c *Character) VisualTick(dt float32) {
	if dt <= 0 {
		return
	}
	c.smoothRotation(dt)
	if c.platform != nil {
		c.platform.CatchUp(c.ctx)
	}
}

// recoverTick absorbs panics escaping a tick so a faulting character degrades
// to standing idle instead of halting the driver.
func (c *Character) recoverTick() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		c.log.Errorf("character: recovered from tick panic: %v", r)
		c.ctx.InputDirection = mgl32.Vec3{}
		c.setState(StateIdle)
	}
}
