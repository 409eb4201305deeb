package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
)

// ascendEpsilon is the vertical speed above which a character is considered
// ascending and never grounded, regardless of what the probe finds.
const ascendEpsilon = float32(0.01)

// DetectGround classifies the character's support. The primary test is a
// downward sweep of a slightly shrunken, slightly raised capsule; a raycast
// from the bottom-sphere centre is the fallback when the sweep starts
// penetrating or finds nothing. A hit steeper than the slope limit is kept for
// slide reporting but never counts as grounded.
func (r *Resolver) DetectGround(ctx *character.Context) {
	conf := ctx.Config
	up := ctx.WorldUp
	down := up.Mul(-1)

	ctx.Ground = character.Ground{}
	ctx.IsGrounded = false
	ctx.IsOnNonWalkableSlope = false
	ctx.GroundNormal = up

	probe := conf.GroundedCheckDistance
	if ctx.WasGrounded {
		// Extend the probe while previously grounded so walking down steps and
		// slopes does not flicker the grounded flag.
		probe += conf.StepHeight
	}

	const lift = game.SkinWidth * 2
	capsule := ctx.Capsule().Shrunk(game.SkinWidth).Translate(up.Mul(lift))

	hit, ok := r.src.CapsuleCast(capsule, down, probe+lift+game.SkinWidth, conf.GroundMask)
	if ok && !hit.StartPenetrating {
		// Reject contacts outside the capsule's lower hemisphere: a side or
		// ceiling graze during the sweep is not support.
		bottomAtHit := capsule.Bottom.Add(down.Mul(hit.Distance))
		if hit.Point.Sub(bottomAtHit).Dot(up) > 1e-3 {
			ok = false
		}
	}

	var g character.Ground
	if ok && !hit.StartPenetrating {
		g = character.Ground{
			Hit:      true,
			Walkable: ctx.Walkable(hit.Normal),
			Distance: game.Clamp32(hit.Distance-lift, 0, probe),
			Normal:   hit.Normal,
			Point:    hit.Point,
			Collider: hit.Collider,
			Layer:    hit.Layer,
			Body:     hit.Body,
		}
	} else {
		origin := ctx.Capsule().Bottom
		rhit, rok := r.src.Raycast(origin, down, conf.Radius+probe, conf.GroundMask)
		if rok {
			g = character.Ground{
				Hit:         true,
				Walkable:    ctx.Walkable(rhit.Normal),
				Distance:    game.Clamp32(rhit.Distance-conf.Radius, 0, probe),
				Normal:      rhit.Normal,
				Point:       rhit.Point,
				Collider:    rhit.Collider,
				Layer:       rhit.Layer,
				Body:        rhit.Body,
				FromRaycast: true,
			}
		}
	}

	if g.Hit && !g.Walkable && !g.FromRaycast {
		// A contact on a convex edge reports the rounded capsule normal even
		// when the surface past the edge is flat; probe just beyond the contact
		// for the surface the character actually stands over.
		if n, _, ok := r.ledgeNormal(ctx, g.Point, ctx.Position); ok {
			g.Walkable = true
			g.Normal = n
		}
	}

	ctx.Ground = g
	if !g.Hit {
		return
	}

	ctx.GroundNormal = g.Normal
	ctx.IsOnNonWalkableSlope = !g.Walkable
	ctx.IsGrounded = g.Walkable && ctx.VerticalVelocity <= ascendEpsilon
}

// ledgeNormal refines a support contact whose raw normal lies outside the
// slope limit: a short raycast nudged horizontally away from the capsule axis,
// just past the contact point, recovers the surface past the edge. It returns
// the probed normal and point only when that surface is walkable.
func (r *Resolver) ledgeNormal(ctx *character.Context, point, axis mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3, bool) {
	up := ctx.WorldUp
	away := game.SafeNormalize(game.ProjectOnPlane(point.Sub(axis), up))
	if away.LenSqr() == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}

	const nudge = game.SkinWidth * 2
	origin := point.Add(away.Mul(nudge)).Add(up.Mul(nudge * 2))
	hit, ok := r.src.Raycast(origin, up.Mul(-1), nudge*4, ctx.Config.GroundMask)
	if !ok || !ctx.Walkable(hit.Normal) {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return hit.Normal, hit.Point, true
}

// snapToGround nudges the capsule's height into the target clearance band
// above its support using a second swept test, so snapping can never pull the
// character through geometry. Suspended while the ground constraint is paused.
func (r *Resolver) snapToGround(ctx *character.Context) {
	if !ctx.IsGrounded || ctx.GroundConstraintPause > 0 {
		return
	}

	conf := ctx.Config
	up := ctx.WorldUp
	start := ctx.Position.Add(up.Mul(conf.StepHeight))

	hit, ok := r.src.CapsuleCast(ctx.CapsuleAt(start), up.Mul(-1), conf.StepHeight+conf.GroundedCheckDistance+game.SkinWidth, conf.GroundMask)
	if !ok || hit.StartPenetrating || !ctx.Walkable(hit.Normal) {
		return
	}

	// Settle with the skin width of clearance above the contact.
	delta := conf.StepHeight - hit.Distance + game.SkinWidth
	if game.Float32ApproxEq(delta, 0) {
		return
	}
	ctx.Position = ctx.Position.Add(up.Mul(delta))
}
