package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
	"github.com/charmotion/charmotion/scene"
)

// Tracker keeps a character attached to a moving platform by caching the
// character's position in the platform's local frame and re-projecting it
// through the platform's transform every tick.
type Tracker struct {
	body        *scene.Body
	localOffset mgl32.Vec3
	lastRot     mgl32.Quat
	lastBodyPos mgl32.Vec3
	velocity    mgl32.Vec3
}

// NewTracker returns a detached tracker.
func NewTracker() *Tracker {
	return &Tracker{lastRot: mgl32.QuatIdent()}
}

// Attached reports whether the character currently rides a platform.
func (t *Tracker) Attached() bool {
	return t.body != nil
}

// Velocity returns the platform velocity derived from the last attach update.
func (t *Tracker) Velocity() mgl32.Vec3 {
	return t.velocity
}

// PreMove runs before the state machine: it resolves attachment against the
// current ground result and translates the character with the platform.
func (t *Tracker) PreMove(ctx *character.Context) {
	g := ctx.Ground
	supported := ctx.IsGrounded && g.Body != nil && ctx.Config.PlatformMask.Has(g.Layer)

	if supported && t.body != g.Body {
		t.attach(ctx, g.Body)
	} else if !supported && t.body != nil {
		t.detach(ctx)
	}
	if t.body == nil {
		return
	}

	target := t.body.TransformPoint(t.localOffset)
	delta := target.Sub(ctx.Position)
	ctx.Position = target
	if ctx.DeltaTime > 0 {
		t.velocity = delta.Mul(1 / ctx.DeltaTime)
	}

	if ctx.Config.InheritPlatformRotation {
		rotDelta := t.body.Rotation().Mul(t.lastRot.Inverse())
		ctx.Orientation = rotDelta.Mul(ctx.Orientation).Normalize()
	}
	t.lastRot = t.body.Rotation()
}

// PostMove runs after collision resolution and re-caches the platform-local
// offset from the character's final position.
func (t *Tracker) PostMove(ctx *character.Context) {
	if t.body == nil {
		return
	}
	t.localOffset = t.body.InverseTransformPoint(ctx.Position)
	t.lastBodyPos = t.body.Position()
}

// CatchUp is the cosmetic late pass: it applies platform movement that
// happened since the last fixed tick directly to the character, without any
// collision queries, purely to hide visual desync from platforms animated
// outside the fixed cadence.
func (t *Tracker) CatchUp(ctx *character.Context) {
	if t.body == nil {
		return
	}
	delta := t.body.Position().Sub(t.lastBodyPos)
	if delta.LenSqr() == 0 {
		return
	}
	ctx.Position = ctx.Position.Add(delta)
	t.lastBodyPos = t.body.Position()
}

func (t *Tracker) attach(ctx *character.Context, body *scene.Body) {
	t.body = body
	t.localOffset = body.InverseTransformPoint(ctx.Position)
	t.lastRot = body.Rotation()
	t.lastBodyPos = body.Position()
	t.velocity = mgl32.Vec3{}
}

// detach clears the attachment. When leaving into the air with momentum
// inheritance enabled, the platform's last derived velocity becomes inherited
// air velocity; the air states combine it magnitude-dominantly with input.
func (t *Tracker) detach(ctx *character.Context) {
	if ctx.Config.InheritPlatformMomentum && !ctx.IsGrounded {
		ctx.InheritedVelocity = ctx.InheritedVelocity.
			Add(game.ProjectOnPlane(t.velocity, ctx.WorldUp))
	}
	t.body = nil
	t.velocity = mgl32.Vec3{}
	t.localOffset = mgl32.Vec3{}
}
