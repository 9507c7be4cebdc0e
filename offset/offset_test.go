package offset

import (
	"math"
	"testing"

	"github.com/akmonengine/reach/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func assertVec3(t *testing.T, expected, actual mgl64.Vec3, msgAndArgs ...any) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, expected[i], actual[i], tolerance, msgAndArgs...)
	}
}

func assertOrientation(t *testing.T, expected, actual mgl64.Quat) {
	t.Helper()
	assert.True(t, expected.OrientationEqualThreshold(actual, 1e-7), "orientation %v != %v", expected, actual)
}

// newRig builds root -> rig -> ray with a die attached to the root
func newRig(t *testing.T) (root, rig, ray, die *scene.Node) {
	t.Helper()
	root = scene.NewNode("scene")
	rig = scene.NewNode("rig")
	ray = scene.NewNode("ray")
	die = scene.NewShapeNode("die", &scene.Box{HalfExtents: mgl64.Vec3{0.3, 0.3, 0.3}}, mgl64.Vec3{0, 1, -1})
	require.NoError(t, root.Add(rig))
	require.NoError(t, rig.Add(ray))
	require.NoError(t, root.Add(die))
	return root, rig, ray, die
}

// =============================================================================
// Capture
// =============================================================================

func TestCapture_IdentityController(t *testing.T) {
	_, _, ray, die := newRig(t)
	ray.SetPosition(mgl64.Vec3{0, 1, 0})

	o := Capture(ray, die)

	assertVec3(t, mgl64.Vec3{0, 0, -1}, o.Position)
	assertOrientation(t, mgl64.QuatIdent(), o.Orientation)
	assertVec3(t, mgl64.Vec3{1, 1, 1}, o.Scale)
}

func TestCapture_AccountsForSourceRotation(t *testing.T) {
	_, _, ray, die := newRig(t)
	ray.SetPosition(mgl64.Vec3{0, 1, 0})
	ray.SetRotation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	o := Capture(ray, die)

	// world -Z seen from a frame turned +90° around Y is local +X
	assertVec3(t, mgl64.Vec3{1, 0, 0}, o.Position)
	assertOrientation(t, mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{0, 1, 0}), o.Orientation)
	assert.InDelta(t, -math.Pi/2, o.Rotation.Y, tolerance)
}

func TestCapture_AccountsForSourceScale(t *testing.T) {
	_, rig, ray, die := newRig(t)
	rig.SetScale(mgl64.Vec3{2, 2, 2})
	ray.SetPosition(mgl64.Vec3{0, 0.5, 0})

	o := Capture(ray, die)

	assertVec3(t, mgl64.Vec3{0, 0, -0.5}, o.Position)
	assertVec3(t, mgl64.Vec3{0.5, 0.5, 0.5}, o.Scale)
}

// Reparenting with the captured offset must not move the object
func TestCapture_ReparentPreservesWorldPose(t *testing.T) {
	tests := []struct {
		name        string
		rigPosition mgl64.Vec3
		rigScale    mgl64.Vec3
		rayPosition mgl64.Vec3
		rayRotation mgl64.Quat
		dieRotation mgl64.Quat
	}{
		{
			name:        "translated",
			rigPosition: mgl64.Vec3{0.2, 0, 0.4},
			rigScale:    mgl64.Vec3{1, 1, 1},
			rayPosition: mgl64.Vec3{0.2, 1.5, -0.3},
			rayRotation: mgl64.QuatIdent(),
			dieRotation: mgl64.QuatIdent(),
		},
		{
			name:        "rotated ray and die",
			rigPosition: mgl64.Vec3{0, 0, 0},
			rigScale:    mgl64.Vec3{1, 1, 1},
			rayPosition: mgl64.Vec3{0.1, 1.2, -0.5},
			rayRotation: mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize()),
			dieRotation: mgl64.QuatRotate(-1.3, mgl64.Vec3{0, 1, 1}.Normalize()),
		},
		{
			name:        "scaled and rotated rig",
			rigPosition: mgl64.Vec3{-1, 0, 2},
			rigScale:    mgl64.Vec3{1.5, 1.5, 1.5},
			rayPosition: mgl64.Vec3{0.3, 1, 0},
			rayRotation: mgl64.QuatRotate(2.1, mgl64.Vec3{0, 1, 0}),
			dieRotation: mgl64.QuatRotate(0.4, mgl64.Vec3{1, 0, 0}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rig, ray, die := newRig(t)
			rig.SetPosition(tt.rigPosition)
			rig.SetScale(tt.rigScale)
			ray.SetPosition(tt.rayPosition)
			ray.SetRotation(tt.rayRotation)
			die.SetRotation(tt.dieRotation)

			before := CaptureWorld(die)

			o := Capture(ray, die)
			require.NoError(t, ray.Add(die))
			Apply(die, o)

			after := CaptureWorld(die)
			assertVec3(t, before.Position, after.Position)
			assertOrientation(t, before.Orientation, after.Orientation)
			assertVec3(t, before.Scale, after.Scale)
		})
	}
}

// =============================================================================
// CaptureWorld
// =============================================================================

func TestCaptureWorld_ReleaseRoundTrip(t *testing.T) {
	root, _, ray, die := newRig(t)
	ray.SetPosition(mgl64.Vec3{0.2, 1.5, -0.3})
	ray.SetRotation(mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0}))
	require.NoError(t, ray.Add(die))
	die.SetLocal(scene.Transform{Position: mgl64.Vec3{0, 0, -0.2}})

	expected := ray.WorldPosition().Add(ray.WorldRotation().Rotate(mgl64.Vec3{0, 0, -0.2}))
	held := CaptureWorld(die)
	assertVec3(t, expected, held.Position)

	require.NoError(t, root.Add(die))
	Apply(die, held.In(root))

	released := CaptureWorld(die)
	assertVec3(t, held.Position, released.Position)
	assertOrientation(t, held.Orientation, released.Orientation)
}

func TestWorldIn_NilFrame(t *testing.T) {
	w := World{
		Position:    mgl64.Vec3{1, 2, 3},
		Orientation: mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}

	o := w.In(nil)
	assert.Equal(t, w.Position, o.Position)
	assert.Equal(t, w.Orientation, o.Orientation)
}

// =============================================================================
// Euler
// =============================================================================

func TestEulerXYZ_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		euler Euler
	}{
		{"identity", Euler{}},
		{"x only", Euler{X: 0.5}},
		{"y only", Euler{Y: -0.8}},
		{"z only", Euler{Z: 1.2}},
		{"mixed", Euler{X: 0.3, Y: -0.4, Z: 2.5}},
		{"near gimbal", Euler{X: 0.2, Y: math.Pi/2 - 1e-3, Z: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.euler.Quat()
			got := EulerXYZ(q)
			assert.InDelta(t, tt.euler.X, got.X, 1e-6)
			assert.InDelta(t, tt.euler.Y, got.Y, 1e-6)
			assert.InDelta(t, tt.euler.Z, got.Z, 1e-6)
		})
	}
}

func TestEulerXYZ_GimbalLock(t *testing.T) {
	q := Euler{X: 0.3, Y: math.Pi / 2, Z: 0}.Quat()

	got := EulerXYZ(q)

	assert.InDelta(t, math.Pi/2, got.Y, 1e-6)
	assert.InDelta(t, 0.0, got.Z, tolerance)
	// The decomposition still describes the same orientation
	assertOrientation(t, q, got.Quat())
}

func TestEulerDegrees(t *testing.T) {
	d := Euler{X: math.Pi, Y: math.Pi / 2, Z: -math.Pi / 4}.Degrees()
	assertVec3(t, mgl64.Vec3{180, 90, -45}, d)
}
