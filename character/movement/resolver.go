package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/character"
	"github.com/charmotion/charmotion/game"
	"github.com/charmotion/charmotion/scene"
)

// Resolver turns desired displacements into collision-safe ones by iterative
// capsule sweeping against the character's spatial query source.
type Resolver struct {
	src scene.Source
}

// NewResolver returns a resolver querying the given source.
func NewResolver(src scene.Source) *Resolver {
	return &Resolver{src: src}
}

// Register attaches the movement components to the character: the swept
// collision resolver and the moving platform tracker.
func Register(c *character.Character) {
	c.SetResolver(NewResolver(c.Source()))
	c.SetPlatformTracker(NewTracker())
}

// Move converts the desired displacement into the maximal non-penetrating,
// slide-adjusted displacement, applies it to the context's position and
// returns it. See the pass loop for the contact handling rules.
func (r *Resolver) Move(ctx *character.Context, desired mgl32.Vec3) mgl32.Vec3 {
	p := newPass()
	defer putPass(p)

	start := ctx.Position
	up := ctx.WorldUp

	r.depenetrate(ctx)

	remaining := desired
	if ctx.IsGrounded && ctx.Ground.Walkable {
		remaining = reorientTangent(remaining, ctx.GroundNormal, up)
	}

	// Slope-boost budget: upward deflection gained from glancing contacts may
	// never exceed the vertical component of the original displacement.
	maxUp := math32.Max(0, desired.Dot(up))

	for iter := 0; iter < game.MaxResolverIterations && remaining.LenSqr() > 1e-10; iter++ {
		dir := game.SafeNormalize(remaining)
		dist := remaining.Len()

		hit, ok := r.src.CapsuleCast(ctx.Capsule(), dir, dist+game.SkinWidth, ctx.Config.CollisionMask)
		if !ok {
			ctx.Position = ctx.Position.Add(remaining)
			break
		}
		if hit.StartPenetrating {
			// The sweep begins overlapping; push out along the contact normal
			// and retry the remainder next iteration.
			ctx.Position = ctx.Position.Add(hit.Normal.Mul(game.SkinWidth))
			continue
		}

		consume := game.Clamp32(hit.Distance-game.SkinWidth, 0, dist)
		ctx.Position = ctx.Position.Add(dir.Mul(consume))
		remainder := dir.Mul(dist - consume)

		walkable := ctx.Walkable(hit.Normal)
		above := hit.Normal.Dot(up) <= -game.HemisphereThreshold

		if !walkable && !above && ctx.IsGrounded {
			if r.tryStepUp(ctx, remainder) {
				break
			}
		}

		slid, halt := p.slide(remainder, hit.Normal)
		if halt {
			break
		}
		remaining = slid
		if !ctx.IsGrounded {
			// Slope boosting only concerns airborne glancing contacts; grounded
			// sliding up a walkable surface is ordinary climbing.
			remaining = p.clampSlopeBoost(slid, hit.Normal, up, maxUp)
		}
	}

	if ctx.IsGrounded {
		r.snapToGround(ctx)
		if ctx.VerticalVelocity < 0 {
			ctx.VerticalVelocity = 0
		}
	}
	r.applySlopeSlide(ctx)

	return ctx.Position.Sub(start)
}

// depenetrate resolves any pre-existing overlap before the pass moves at all.
func (r *Resolver) depenetrate(ctx *character.Context) {
	for i := 0; i < 3; i++ {
		dir, depth, ok := r.src.Penetration(ctx.Capsule(), ctx.Config.CollisionMask)
		if !ok {
			return
		}
		ctx.Position = ctx.Position.Add(dir.Mul(depth))
	}
}

// slide projects the remainder along the newest contact plane, applying the
// crease rules on the second contact and halting on the third.
func (p *pass) slide(remainder, normal mgl32.Vec3) (mgl32.Vec3, bool) {
	p.contacts++
	if p.contacts >= game.MaxSlideContacts {
		return mgl32.Vec3{}, true
	}
	if p.contacts == 1 {
		p.firstNormal = normal
		return game.ProjectOnPlane(remainder, normal), false
	}

	crease := p.firstNormal.Cross(normal)
	if crease.LenSqr() < 1e-6 {
		// Near-parallel surfaces hit in the same pass: no stable crease
		// direction exists, so treat it as an opposing corner and halt.
		return mgl32.Vec3{}, true
	}
	if remainder.Dot(p.firstNormal) < 0 && remainder.Dot(normal) < 0 {
		// Both surfaces oppose the motion: only the crease line remains.
		crease = game.SafeNormalize(crease)
		return crease.Mul(remainder.Dot(crease)), false
	}
	return game.ProjectOnPlane(remainder, normal), false
}

// clampSlopeBoost caps upward deflection at the pass's remaining vertical
// budget and redistributes the clamped excess horizontally along the impact
// normal.
func (p *pass) clampSlopeBoost(slid, normal, up mgl32.Vec3, maxUp float32) mgl32.Vec3 {
	upComp := slid.Dot(up)
	allowed := maxUp - p.upGained
	if upComp > allowed {
		excess := upComp - allowed
		slid = slid.Sub(up.Mul(excess))
		if horizontal := game.SafeNormalize(game.ProjectOnPlane(normal, up)); horizontal.LenSqr() > 0 {
			slid = slid.Add(horizontal.Mul(excess))
		}
		upComp = allowed
	}
	if upComp > 0 {
		p.upGained += upComp
	}
	return slid
}

// applySlopeSlide adds the downslope displacement owed while supported by a
// non-walkable slope. The magnitude scales linearly from zero at the slope
// limit to the full gravity-driven magnitude at 90°, and the displacement
// itself is swept so it cannot tunnel. Lateral contacts with steep surfaces
// while standing on walkable ground owe no slide.
func (r *Resolver) applySlopeSlide(ctx *character.Context) {
	if !ctx.Ground.Hit || ctx.Ground.Walkable {
		return
	}
	normal := ctx.Ground.Normal

	conf := ctx.Config
	up := ctx.WorldUp
	angle := game.SurfaceAngle(normal, up)
	if angle <= conf.SlopeLimit {
		return
	}

	t := game.Clamp32((angle-conf.SlopeLimit)/(90-conf.SlopeLimit), 0, 1)
	downslope := game.SafeNormalize(game.ProjectOnPlane(up.Mul(-1), normal))
	if downslope.LenSqr() == 0 {
		downslope = up.Mul(-1)
	}

	dist := conf.Gravity * t * ctx.DeltaTime
	if hit, ok := r.src.CapsuleCast(ctx.Capsule(), downslope, dist+game.SkinWidth, conf.CollisionMask); ok {
		dist = game.Clamp32(hit.Distance-game.SkinWidth, 0, dist)
	}
	ctx.Position = ctx.Position.Add(downslope.Mul(dist))
}

// reorientTangent redirects the ground-plane component of the displacement
// tangent to the support surface, preserving its magnitude, so walking up or
// down a walkable slope does not change speed.
func reorientTangent(desired, groundNormal, up mgl32.Vec3) mgl32.Vec3 {
	h := game.ProjectOnPlane(desired, up)
	v := desired.Sub(h)
	if h.LenSqr() == 0 {
		return desired
	}
	return game.ReorientOnPlane(h, groundNormal).Add(v)
}
