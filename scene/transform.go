package scene

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a local position, orientation and scale relative to a parent frame
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Mat4 composes T * R * S
func (t Transform) Mat4() mgl64.Mat4 {
	translate := mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// normalized fills the zero values a literal Transform may carry
func (t Transform) normalized() Transform {
	if t.Rotation == (mgl64.Quat{}) {
		t.Rotation = mgl64.QuatIdent()
	} else {
		t.Rotation = t.Rotation.Normalize()
	}
	if t.Scale == (mgl64.Vec3{}) {
		t.Scale = mgl64.Vec3{1, 1, 1}
	}

	return t
}
