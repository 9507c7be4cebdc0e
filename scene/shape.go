package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType represents the type of renderable geometry attached to a node
type ShapeType int

const (
	ShapeTypeSphere ShapeType = iota
	ShapeTypeBox
)

// Shape is the geometry of a renderable leaf node, in node-local space
type Shape interface {
	Type() ShapeType
	// ComputeAABB calculates the world-space axis-aligned bounding box
	// of the shape placed by the given world matrix
	ComputeAABB(world mgl64.Mat4) AABB
}

// Box represents an oriented box
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b *Box) Type() ShapeType {
	return ShapeTypeBox
}

func (b *Box) ComputeAABB(world mgl64.Mat4) AABB {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	// The 8 corners of the box in local space
	corners := [8]mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{-hx, +hy, -hz},
		{+hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{-hx, +hy, +hz},
		{+hx, +hy, +hz},
	}

	// Transform the first corner to initialize min/max
	worldCorner := mgl64.TransformCoordinate(corners[0], world)
	aabb := AABB{Min: worldCorner, Max: worldCorner}

	for i := 1; i < 8; i++ {
		aabb.expand(mgl64.TransformCoordinate(corners[i], world))
	}

	return aabb
}

// Sphere represents a spherical shape centered on the node origin
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType {
	return ShapeTypeSphere
}

// ComputeAABB is not affected by rotation; a non-uniform scale uses its largest axis
func (s *Sphere) ComputeAABB(world mgl64.Mat4) AABB {
	center := mgl64.TransformCoordinate(mgl64.Vec3{}, world)

	maxScale := 0.0
	for i := 0; i < 3; i++ {
		maxScale = math.Max(maxScale, world.Col(i).Vec3().Len())
	}
	r := s.Radius * maxScale

	return NewAABBFromCenter(center, mgl64.Vec3{r, r, r})
}
