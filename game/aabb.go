package game

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// AABBFromPoints returns the smallest bounding box containing every given point.
func AABBFromPoints(points ...mgl32.Vec3) cube.BBox {
	min := mgl32.Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32}
	max := mgl32.Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
}
