package scene

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Mask is a collision layer bitmask. A query with mask m considers a collider
// on layer l whenever m&l != 0.
type Mask uint32

const (
	LayerStatic Mask = 1 << iota
	LayerPlatform
	LayerClimbable

	MaskAll Mask = ^Mask(0)
)

// Has reports whether the mask includes any layer of other.
func (m Mask) Has(other Mask) bool {
	return m&other != 0
}

// collider is a single triangle registered in the scene. Triangles belonging to
// a body are stored in the body's local space and transformed on demand.
type collider struct {
	id    int
	layer Mask
	tri   Triangle
	body  *Body
	bbox  cube.BBox
}

// worldTri returns the triangle in world space.
func (c *collider) worldTri() Triangle {
	if c.body == nil {
		return c.tri
	}
	return Triangle{
		A: c.body.TransformPoint(c.tri.A),
		B: c.body.TransformPoint(c.tri.B),
		C: c.body.TransformPoint(c.tri.C),
	}
}

// Scene is a synthetic triangle-soup collision world implementing Source. It
// exists so that the movement core can be exercised without a real physics
// backend; embedders are expected to provide their own Source in production.
type Scene struct {
	colliders []*collider
	bodies    []*Body
	nextID    int
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddTriangle registers a static world-space triangle on the given layer and
// returns its collider ID.
func (s *Scene) AddTriangle(tri Triangle, layer Mask) int {
	id := s.nextID
	s.nextID++
	s.colliders = append(s.colliders, &collider{id: id, layer: layer, tri: tri, bbox: tri.BBox()})
	return id
}

// AddQuad registers the two triangles of the quad a-b-c-d (counter-clockwise,
// shared diagonal a-c) and returns their collider IDs.
func (s *Scene) AddQuad(a, b, c, d mgl32.Vec3, layer Mask) [2]int {
	return [2]int{
		s.AddTriangle(Triangle{A: a, B: b, C: c}, layer),
		s.AddTriangle(Triangle{A: a, B: c, C: d}, layer),
	}
}

// AddBox registers the twelve triangles of an axis-aligned box with outward
// normals.
func (s *Scene) AddBox(box cube.BBox, layer Mask) []int {
	min, max := box.Min(), box.Max()
	v := [8]mgl32.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{max[0], min[1], max[2]},
		{min[0], min[1], max[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{max[0], max[1], max[2]},
		{min[0], max[1], max[2]},
	}

	ids := make([]int, 0, 12)
	addQuad := func(a, b, c, d int) {
		q := s.AddQuad(v[a], v[b], v[c], v[d], layer)
		ids = append(ids, q[0], q[1])
	}
	addQuad(4, 5, 6, 7) // top (+Y)
	addQuad(0, 3, 2, 1) // bottom (-Y)
	addQuad(3, 7, 6, 2) // +Z
	addQuad(1, 5, 4, 0) // -Z
	addQuad(2, 6, 5, 1) // +X
	addQuad(0, 4, 7, 3) // -X
	return ids
}

// AddBody registers a dynamic body. Triangles added through Body.AddTriangle or
// Body.AddBox live in the body's local space and follow its transform.
func (s *Scene) AddBody(layer Mask) *Body {
	b := &Body{scene: s, layer: layer, rotation: mgl32.QuatIdent()}
	s.bodies = append(s.bodies, b)
	return b
}

// candidates returns the colliders whose bounding boxes intersect the given
// box and whose layer matches the mask.
func (s *Scene) candidates(box cube.BBox, mask Mask) []*collider {
	var out []*collider
	for _, c := range s.colliders {
		if !mask.Has(c.layer) {
			continue
		}
		if c.bbox.IntersectsWith(box) {
			out = append(out, c)
		}
	}
	return out
}
