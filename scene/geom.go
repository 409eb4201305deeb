package scene

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/charmotion/charmotion/game"
)

// Capsule is a vertical-axis-free capsule described by the centres of its two
// end spheres and a radius. Bottom and Top may be swapped freely; queries only
// care about the segment between them.
type Capsule struct {
	Bottom mgl32.Vec3
	Top    mgl32.Vec3
	Radius float32
}

// NewCapsule returns a capsule whose lowest surface point is at feet, extending
// height along up. Height is clamped so that the capsule never degenerates
// below a sphere.
func NewCapsule(feet, up mgl32.Vec3, radius, height float32) Capsule {
	if height < radius*2 {
		height = radius * 2
	}
	return Capsule{
		Bottom: feet.Add(up.Mul(radius)),
		Top:    feet.Add(up.Mul(height - radius)),
		Radius: radius,
	}
}

// Translate returns the capsule moved by delta.
func (c Capsule) Translate(delta mgl32.Vec3) Capsule {
	return Capsule{Bottom: c.Bottom.Add(delta), Top: c.Top.Add(delta), Radius: c.Radius}
}

// Shrunk returns the capsule with its radius reduced by d, keeping the segment.
func (c Capsule) Shrunk(d float32) Capsule {
	r := c.Radius - d
	if r < 1e-4 {
		r = 1e-4
	}
	return Capsule{Bottom: c.Bottom, Top: c.Top, Radius: r}
}

// BBox returns the world-space bounding box of the capsule.
func (c Capsule) BBox() cube.BBox {
	box := game.AABBFromPoints(c.Bottom, c.Top)
	return box.Grow(c.Radius)
}

// Triangle is a single-sided collision triangle. Its normal follows the
// counter-clockwise winding of A, B, C.
type Triangle struct {
	A, B, C mgl32.Vec3
}

// Normal returns the unit normal of the triangle.
func (t Triangle) Normal() mgl32.Vec3 {
	return game.SafeNormalize(t.B.Sub(t.A).Cross(t.C.Sub(t.A)))
}

// BBox returns the bounding box of the triangle.
func (t Triangle) BBox() cube.BBox {
	return game.AABBFromPoints(t.A, t.B, t.C)
}

// Translate returns the triangle moved by delta.
func (t Triangle) Translate(delta mgl32.Vec3) Triangle {
	return Triangle{A: t.A.Add(delta), B: t.B.Add(delta), C: t.C.Add(delta)}
}

// closestPointOnTriangle returns the point on triangle t closest to p.
// Real-Time Collision Detection, §5.1.5.
func closestPointOnTriangle(p mgl32.Vec3, t Triangle) mgl32.Vec3 {
	ab := t.B.Sub(t.A)
	ac := t.C.Sub(t.A)
	ap := p.Sub(t.A)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return t.A
	}

	bp := p.Sub(t.B)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return t.B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return t.A.Add(ab.Mul(v))
	}

	cp := p.Sub(t.C)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return t.C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return t.A.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return t.B.Add(t.C.Sub(t.B).Mul(w))
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return t.A.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// closestPtSegmentSegment computes the closest points c1, c2 between segments
// p1q1 and p2q2. Real-Time Collision Detection, §5.1.9.
func closestPtSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (c1, c2 mgl32.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	var s, t float32
	const eps = 1e-8

	switch {
	case a <= eps && e <= eps:
		return p1, p2
	case a <= eps:
		t = game.Clamp32(f/e, 0, 1)
	case e <= eps:
		s = game.Clamp32(-d1.Dot(r)/a, 0, 1)
	default:
		c := d1.Dot(r)
		b := d1.Dot(d2)
		denom := a*e - b*b
		if denom > eps {
			s = game.Clamp32((b*f-c*e)/denom, 0, 1)
		}
		t = (b*s + f) / e
		if t < 0 {
			t = 0
			s = game.Clamp32(-c/a, 0, 1)
		} else if t > 1 {
			t = 1
			s = game.Clamp32((b-c)/a, 0, 1)
		}
	}

	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

// segmentTriangleClosest returns the pair of closest points between segment ab
// and triangle t. If the segment crosses the triangle's interior the crossing
// point is returned for both and the distance between them is zero.
func segmentTriangleClosest(a, b mgl32.Vec3, t Triangle) (onSeg, onTri mgl32.Vec3) {
	n := t.Normal()
	da := a.Sub(t.A).Dot(n)
	db := b.Sub(t.A).Dot(n)

	// Segment crosses the triangle plane: check the crossing point directly.
	if da*db < 0 {
		s := da / (da - db)
		p := a.Add(b.Sub(a).Mul(s))
		if pointInTriangle(p, t, n) {
			return p, p
		}
	}

	bestSeg, bestTri := a, closestPointOnTriangle(a, t)
	bestDist := bestSeg.Sub(bestTri).LenSqr()

	consider := func(s, tr mgl32.Vec3) {
		if d := s.Sub(tr).LenSqr(); d < bestDist {
			bestSeg, bestTri, bestDist = s, tr, d
		}
	}

	consider(b, closestPointOnTriangle(b, t))

	edges := [3][2]mgl32.Vec3{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}}
	for _, e := range edges {
		s, tr := closestPtSegmentSegment(a, b, e[0], e[1])
		consider(s, tr)
	}

	return bestSeg, bestTri
}

// pointInTriangle reports whether p, already known to lie on the triangle's
// plane, falls within the triangle's edges.
func pointInTriangle(p mgl32.Vec3, t Triangle, n mgl32.Vec3) bool {
	for _, e := range [3][2]mgl32.Vec3{{t.A, t.B}, {t.B, t.C}, {t.C, t.A}} {
		edge := e[1].Sub(e[0])
		if edge.Cross(p.Sub(e[0])).Dot(n) < -1e-6 {
			return false
		}
	}
	return true
}

// rayTriangle intersects a ray with a triangle using Möller-Trumbore, returning
// the travel distance along dir. Backfaces are reported too; the caller flips
// the normal toward the ray origin.
func rayTriangle(origin, dir mgl32.Vec3, t Triangle) (float32, bool) {
	const eps = 1e-7
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	h := dir.Cross(e2)
	det := e1.Dot(h)
	if math32.Abs(det) < eps {
		return 0, false
	}
	inv := 1.0 / det
	s := origin.Sub(t.A)
	u := s.Dot(h) * inv
	if u < -eps || u > 1+eps {
		return 0, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < -eps || u+v > 1+eps {
		return 0, false
	}
	d := e2.Dot(q) * inv
	if d < 0 {
		return 0, false
	}
	return d, true
}
