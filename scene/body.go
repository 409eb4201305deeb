package scene

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Body is a dynamic collider group with its own transform, used for moving
// platforms. Its triangles are authored in local space; moving the body moves
// every triangle with it.
type Body struct {
	scene *Scene
	layer Mask

	position mgl32.Vec3
	rotation mgl32.Quat

	colliders []*collider
}

// AddTriangle registers a local-space triangle on the body.
func (b *Body) AddTriangle(tri Triangle) int {
	id := b.scene.nextID
	b.scene.nextID++
	c := &collider{id: id, layer: b.layer, tri: tri, body: b}
	c.bbox = c.worldTri().BBox()
	b.colliders = append(b.colliders, c)
	b.scene.colliders = append(b.scene.colliders, c)
	return id
}

// AddBox registers the triangles of a local-space axis-aligned box on the body.
func (b *Body) AddBox(box cube.BBox) {
	tmp := New()
	tmp.AddBox(box, b.layer)
	for _, c := range tmp.colliders {
		b.AddTriangle(c.tri)
	}
}

// Position returns the body's world position.
func (b *Body) Position() mgl32.Vec3 {
	return b.position
}

// Rotation returns the body's world rotation.
func (b *Body) Rotation() mgl32.Quat {
	return b.rotation
}

// SetTransform moves the body and refreshes the bounding boxes of its
// colliders.
func (b *Body) SetTransform(pos mgl32.Vec3, rot mgl32.Quat) {
	b.position = pos
	b.rotation = rot
	for _, c := range b.colliders {
		c.bbox = c.worldTri().BBox()
	}
}

// SetPosition moves the body without changing its rotation.
func (b *Body) SetPosition(pos mgl32.Vec3) {
	b.SetTransform(pos, b.rotation)
}

// TransformPoint converts a local-space point to world space.
func (b *Body) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return b.rotation.Rotate(p).Add(b.position)
}

// InverseTransformPoint converts a world-space point to the body's local space.
func (b *Body) InverseTransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return b.rotation.Inverse().Rotate(p.Sub(b.position))
}
