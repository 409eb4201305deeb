package movement

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
)

// tryStepUp attempts to climb a lateral obstacle: probe up by the step height,
// sweep the remainder forward at the raised position, then sweep down to a
// landing. Success moves the character and consumes the remainder; the landing
// surface must itself be walkable or the step is rejected in favour of normal
// sliding.
func (r *Resolver) tryStepUp(ctx *character.Context, remainder mgl32.Vec3) bool {
	conf := ctx.Config
	up := ctx.WorldUp

	forward := game.ProjectOnPlane(remainder, up)
	fwdLen := forward.Len()
	if fwdLen < 1e-6 {
		return false
	}
	fwdDir := game.SafeNormalize(forward)

	// Probe up: a ceiling shortens the step, possibly to nothing.
	rise := conf.StepHeight
	if hit, ok := r.src.CapsuleCast(ctx.Capsule(), up, rise+game.SkinWidth, conf.CollisionMask); ok {
		rise = game.Clamp32(hit.Distance-game.SkinWidth, 0, rise)
	}
	if rise <= game.SkinWidth {
		return false
	}
	raised := ctx.Position.Add(up.Mul(rise))

	// Sweep forward at the raised height. Hitting almost immediately means the
	// obstacle is taller than the step height.
	consume := fwdLen
	if hit, ok := r.src.CapsuleCast(ctx.CapsuleAt(raised), fwdDir, fwdLen+game.SkinWidth, conf.CollisionMask); ok {
		if hit.StartPenetrating {
			return false
		}
		consume = game.Clamp32(hit.Distance-game.SkinWidth, 0, fwdLen)
		if consume <= game.SkinWidth {
			return false
		}
	}
	stepped := raised.Add(fwdDir.Mul(consume))

	// Sweep down to the landing. It must exist, be reachable without
	// penetration, and be walkable.
	hit, ok := r.src.CapsuleCast(ctx.CapsuleAt(stepped), up.Mul(-1), rise+conf.GroundedCheckDistance, conf.CollisionMask)
	if !ok || hit.StartPenetrating {
		return false
	}
	if !ctx.Walkable(hit.Normal) {
		// The landing sweep may catch the ledge's convex edge and report the
		// rounded capsule normal. Probe past the edge for the real surface; its
		// top must still lie within the step height of the starting position.
		_, point, ok := r.ledgeNormal(ctx, hit.Point, stepped)
		if !ok || point.Sub(ctx.Position).Dot(up) > conf.StepHeight+game.SkinWidth {
			return false
		}
	}
	drop := hit.Distance - game.SkinWidth
	if rise-drop <= 1e-4 {
		// No net elevation gained: plain sliding handles this contact.
		return false
	}

	ctx.Position = stepped.Sub(up.Mul(drop))
	return true
}
