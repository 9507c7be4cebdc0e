// Package offset computes relative transforms between scene nodes: the pose of
// a target expressed in a source node's frame, and a node's absolute world pose.
//
// Orientations are composed as quaternions. Euler angles (order X-Y-Z) are
// derived for display only and never feed back into a composition.
package offset

import (
	"math"

	"github.com/akmonengine/reach/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Euler holds X-Y-Z rotation angles in radians
type Euler struct {
	X, Y, Z float64
}

// Offset is a pose relative to some reference frame
type Offset struct {
	Position    mgl64.Vec3
	Rotation    Euler
	Orientation mgl64.Quat
	Scale       mgl64.Vec3
}

// World is a pose in world space, independent of the node's parent
type World struct {
	Position    mgl64.Vec3
	Rotation    Euler
	Orientation mgl64.Quat
	Scale       mgl64.Vec3
}

// Capture returns the pose of target expressed in the local frame of source.
// Assigned as target's local transform once target is parented under source,
// it leaves the world pose of target unchanged.
func Capture(source, target *scene.Node) Offset {
	return CaptureWorld(target).In(source)
}

// CaptureWorld reads the current world pose of node
func CaptureWorld(node *scene.Node) World {
	orientation := node.WorldRotation()

	return World{
		Position:    node.WorldPosition(),
		Rotation:    EulerXYZ(orientation),
		Orientation: orientation,
		Scale:       node.WorldScale(),
	}
}

// In expresses the world pose in the frame of the given node.
// A nil frame is the world itself.
func (w World) In(frame *scene.Node) Offset {
	if frame == nil {
		return Offset{
			Position:    w.Position,
			Rotation:    w.Rotation,
			Orientation: w.Orientation,
			Scale:       w.Scale,
		}
	}

	// Inverse of the full world matrix accounts for the frame's rotation and scale
	position := mgl64.TransformCoordinate(w.Position, frame.WorldMatrix().Inv())
	orientation := frame.WorldRotation().Inverse().Mul(w.Orientation).Normalize()

	frameScale := frame.WorldScale()
	scale := mgl64.Vec3{
		safeDiv(w.Scale[0], frameScale[0]),
		safeDiv(w.Scale[1], frameScale[1]),
		safeDiv(w.Scale[2], frameScale[2]),
	}

	return Offset{
		Position:    position,
		Rotation:    EulerXYZ(orientation),
		Orientation: orientation,
		Scale:       scale,
	}
}

// Transform converts the offset into a local transform
func (o Offset) Transform() scene.Transform {
	return scene.Transform{
		Position: o.Position,
		Rotation: o.Orientation,
		Scale:    o.Scale,
	}
}

// Apply writes the offset as the local transform of node, in a single write
func Apply(node *scene.Node, o Offset) {
	node.SetLocal(o.Transform())
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return a
	}
	return a / b
}

// EulerXYZ decomposes a rotation into X-Y-Z angles (R = Rx * Ry * Rz)
func EulerXYZ(q mgl64.Quat) Euler {
	m := q.Normalize().Mat4()
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	e := Euler{Y: math.Asin(mgl64.Clamp(m13, -1, 1))}
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		// Gimbal lock: Z folds into X
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}

	return e
}

// Quat rebuilds the orientation from X-Y-Z angles
func (e Euler) Quat() mgl64.Quat {
	qx := mgl64.QuatRotate(e.X, mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(e.Y, mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(e.Z, mgl64.Vec3{0, 0, 1})

	return qx.Mul(qy).Mul(qz).Normalize()
}

// Degrees converts the angles to degrees
func (e Euler) Degrees() mgl64.Vec3 {
	return mgl64.Vec3{mgl64.RadToDeg(e.X), mgl64.RadToDeg(e.Y), mgl64.RadToDeg(e.Z)}
}
