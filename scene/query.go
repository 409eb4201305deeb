package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/game"
)

// Hit is the result of a single spatial query against the scene.
type Hit struct {
	// Collider is the ID of the triangle that was hit.
	Collider int
	// Layer is the collision layer of the hit collider.
	Layer Mask
	// Body is the dynamic body the collider belongs to, or nil for static
	// geometry.
	Body *Body
	// Distance is the travel distance along the query direction at which the
	// contact occurs.
	Distance float32
	// Point is the contact point on the hit surface.
	Point mgl32.Vec3
	// Normal is the surface normal at the contact, pointing towards the
	// queried shape.
	Normal mgl32.Vec3
	// StartPenetrating is true if the swept shape already overlapped the
	// collider before any movement took place.
	StartPenetrating bool
}

// Source is the spatial-query capability the movement core consumes. The
// in-repo Scene implements it over a synthetic triangle soup; production
// embeddings are expected to adapt their physics backend to this interface.
type Source interface {
	// CapsuleCast sweeps a capsule along dir over dist and returns the nearest
	// blocking hit.
	CapsuleCast(c Capsule, dir mgl32.Vec3, dist float32, mask Mask) (Hit, bool)
	// Raycast casts a ray and returns the nearest hit.
	Raycast(origin, dir mgl32.Vec3, dist float32, mask Mask) (Hit, bool)
	// Overlap returns all colliders currently overlapping the capsule.
	Overlap(c Capsule, mask Mask) []Hit
	// Penetration returns the separation vector resolving the deepest overlap
	// between the capsule and the scene, if any.
	Penetration(c Capsule, mask Mask) (mgl32.Vec3, float32, bool)
}

// advancementIterations bounds the conservative-advancement loop of a single
// capsule/triangle sweep.
const advancementIterations = 24

// contactTolerance is the surface distance under which a sweep is considered
// to have made contact.
const contactTolerance = float32(1e-4)

// CapsuleCast sweeps the capsule along dir over dist, returning the nearest
// blocking contact.
func (s *Scene) CapsuleCast(c Capsule, dir mgl32.Vec3, dist float32, mask Mask) (Hit, bool) {
	dir = game.SafeNormalize(dir)
	if dir.LenSqr() == 0 || dist <= 0 {
		return Hit{}, false
	}

	sweptBox := c.BBox().Extend(dir.Mul(dist))
	var (
		best  Hit
		found bool
	)
	for _, cand := range s.candidates(sweptBox, mask) {
		hit, ok := sweepCapsuleTriangle(c, dir, dist, cand.worldTri())
		if !ok {
			continue
		}
		if !found || hit.Distance < best.Distance {
			hit.Collider = cand.id
			hit.Layer = cand.layer
			hit.Body = cand.body
			best = hit
			found = true
		}
	}
	return best, found
}

// sweepCapsuleTriangle advances the capsule along dir until it touches the
// triangle, using conservative advancement. The distance between a linearly
// translating convex shape and a fixed convex shape is convex in the travel
// parameter, so a non-approaching closest feature means no contact ever.
func sweepCapsuleTriangle(c Capsule, dir mgl32.Vec3, dist float32, tri Triangle) (Hit, bool) {
	travelled := float32(0)
	for i := 0; i < advancementIterations; i++ {
		moved := c.Translate(dir.Mul(travelled))
		onSeg, onTri := segmentTriangleClosest(moved.Bottom, moved.Top, tri)
		sep := onSeg.Sub(onTri)
		d := sep.Len() - c.Radius

		if d <= contactTolerance {
			normal := game.SafeNormalize(sep)
			if normal.LenSqr() == 0 {
				// Segment touches the triangle itself; fall back to the face
				// normal, flipped towards the capsule's approach.
				normal = tri.Normal()
				if normal.Dot(dir) > 0 {
					normal = normal.Mul(-1)
				}
			}
			return Hit{
				Distance:         travelled,
				Point:            onTri,
				Normal:           normal,
				StartPenetrating: travelled == 0 && d < -contactTolerance,
			}, true
		}

		toTri := game.SafeNormalize(onTri.Sub(onSeg))
		closing := dir.Dot(toTri)
		if closing <= 1e-6 {
			return Hit{}, false
		}
		travelled += d / closing
		if travelled > dist {
			return Hit{}, false
		}
	}
	return Hit{}, false
}

// Raycast casts a ray against the scene, returning the nearest hit. The
// reported normal faces the ray origin.
func (s *Scene) Raycast(origin, dir mgl32.Vec3, dist float32, mask Mask) (Hit, bool) {
	dir = game.SafeNormalize(dir)
	if dir.LenSqr() == 0 || dist <= 0 {
		return Hit{}, false
	}

	rayBox := game.AABBFromPoints(origin, origin.Add(dir.Mul(dist)))
	var (
		best  Hit
		found bool
	)
	for _, cand := range s.candidates(rayBox, mask) {
		tri := cand.worldTri()
		d, ok := rayTriangle(origin, dir, tri)
		if !ok || d > dist {
			continue
		}
		if !found || d < best.Distance {
			normal := tri.Normal()
			if normal.Dot(dir) > 0 {
				normal = normal.Mul(-1)
			}
			best = Hit{
				Collider: cand.id,
				Layer:    cand.layer,
				Body:     cand.body,
				Distance: d,
				Point:    origin.Add(dir.Mul(d)),
				Normal:   normal,
			}
			found = true
		}
	}
	return best, found
}

// Overlap returns every collider whose surface lies within the capsule.
func (s *Scene) Overlap(c Capsule, mask Mask) []Hit {
	var out []Hit
	for _, cand := range s.candidates(c.BBox(), mask) {
		tri := cand.worldTri()
		onSeg, onTri := segmentTriangleClosest(c.Bottom, c.Top, tri)
		sep := onSeg.Sub(onTri)
		if sep.Len() >= c.Radius {
			continue
		}
		normal := game.SafeNormalize(sep)
		if normal.LenSqr() == 0 {
			normal = tri.Normal()
		}
		out = append(out, Hit{
			Collider:         cand.id,
			Layer:            cand.layer,
			Body:             cand.body,
			Point:            onTri,
			Normal:           normal,
			StartPenetrating: true,
		})
	}
	return out
}

// Penetration resolves the deepest overlap between the capsule and the scene,
// returning the separation direction and depth. Translating the capsule by
// direction*depth removes the overlap.
func (s *Scene) Penetration(c Capsule, mask Mask) (mgl32.Vec3, float32, bool) {
	var (
		bestDir   mgl32.Vec3
		bestDepth float32
		found     bool
	)
	for _, cand := range s.candidates(c.BBox(), mask) {
		tri := cand.worldTri()
		onSeg, onTri := segmentTriangleClosest(c.Bottom, c.Top, tri)
		sep := onSeg.Sub(onTri)
		depth := c.Radius - sep.Len()
		if depth <= contactTolerance {
			continue
		}
		if depth > bestDepth {
			dir := game.SafeNormalize(sep)
			if dir.LenSqr() == 0 {
				dir = tri.Normal()
			}
			bestDir = dir
			bestDepth = depth
			found = true
		}
	}
	if !found {
		return mgl32.Vec3{}, 0, false
	}
	// Keep the resolved capsule a hair off the surface so follow-up sweeps do
	// not immediately re-detect the contact.
	return bestDir, math32.Min(bestDepth+contactTolerance, c.Radius), true
}
