package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// floorTri winds counter-clockwise viewed from above, so its normal is +Y.
var floorTri = Triangle{
	A: mgl32.Vec3{-10, 0, -10},
	B: mgl32.Vec3{0, 0, 10},
	C: mgl32.Vec3{10, 0, -10},
}

func TestTriangleNormal(t *testing.T) {
	n := floorTri.Normal()
	assert.InDelta(t, 0, n.X(), 1e-5)
	assert.InDelta(t, 1, n.Y(), 1e-5)
	assert.InDelta(t, 0, n.Z(), 1e-5)
}

func TestClosestPointOnTriangle(t *testing.T) {
	tests := []struct {
		name  string
		point mgl32.Vec3
		want  mgl32.Vec3
	}{
		{"above interior", mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 0, 0}},
		{"below interior", mgl32.Vec3{1, -2, 1}, mgl32.Vec3{1, 0, 1}},
		{"beyond vertex", mgl32.Vec3{0, 3, 15}, mgl32.Vec3{0, 0, 10}},
		{"beyond edge", mgl32.Vec3{0, 1, -12}, mgl32.Vec3{0, 0, -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := closestPointOnTriangle(tt.point, floorTri)
			assert.InDelta(t, tt.want.X(), got.X(), 1e-4)
			assert.InDelta(t, tt.want.Y(), got.Y(), 1e-4)
			assert.InDelta(t, tt.want.Z(), got.Z(), 1e-4)
		})
	}
}

func TestSegmentTriangleCrossing(t *testing.T) {
	onSeg, onTri := segmentTriangleClosest(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -1, 0}, floorTri)
	assert.InDelta(t, 0, onSeg.Sub(onTri).Len(), 1e-5, "crossing segment should touch the triangle")
	assert.InDelta(t, 0, onTri.Y(), 1e-5)
}

func TestSegmentTriangleAbove(t *testing.T) {
	onSeg, onTri := segmentTriangleClosest(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, 3, 0}, floorTri)
	assert.InDelta(t, 2, onSeg.Sub(onTri).Len(), 1e-4)
	assert.InDelta(t, 2, onSeg.Y(), 1e-4, "closest segment point is the lower endpoint")
}

func TestRayTriangle(t *testing.T) {
	d, ok := rayTriangle(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, -1, 0}, floorTri)
	assert.True(t, ok)
	assert.InDelta(t, 5, d, 1e-4)

	_, ok = rayTriangle(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 1, 0}, floorTri)
	assert.False(t, ok, "ray pointing away must miss")

	_, ok = rayTriangle(mgl32.Vec3{50, 5, 50}, mgl32.Vec3{0, -1, 0}, floorTri)
	assert.False(t, ok, "ray outside the triangle must miss")
}

func TestCapsuleBBox(t *testing.T) {
	c := NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, 0.35, 1.8)
	box := c.BBox()
	assert.InDelta(t, -0.35, box.Min().X(), 1e-5)
	assert.InDelta(t, 0, box.Min().Y(), 1e-5)
	assert.InDelta(t, 1.8, box.Max().Y(), 1e-5)
}
