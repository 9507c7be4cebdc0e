package spatial

import (
	"fmt"
	"testing"

	"github.com/akmonengine/reach/scene"
	"github.com/go-gl/mathgl/mgl64"
)

func createTestBox(name string, position mgl64.Vec3, halfExtent float64) *scene.Node {
	return scene.NewShapeNode(name, &scene.Box{HalfExtents: mgl64.Vec3{halfExtent, halfExtent, halfExtent}}, position)
}

func createGrip(position mgl64.Vec3, halfExtent float64) *scene.Node {
	return createTestBox("grip", position, halfExtent)
}

// =============================================================================
// FindOverlap
// =============================================================================

func TestFindOverlap_DieInReach(t *testing.T) {
	grip := createGrip(mgl64.Vec3{0, 1, 0}, 0.8)
	die := createTestBox("die", mgl64.Vec3{0, 1, -1}, 0.3)

	if got := FindOverlap(grip, []*scene.Node{die}); got != die {
		t.Errorf("FindOverlap = %v, want die", got)
	}
}

func TestFindOverlap_FirstMatchWins(t *testing.T) {
	grip := createGrip(mgl64.Vec3{0, 0, 0}, 0.5)
	a := createTestBox("A", mgl64.Vec3{0.6, 0, 0}, 0.3)
	b := createTestBox("B", mgl64.Vec3{0, 0, 0}, 0.3)

	tests := []struct {
		name       string
		candidates []*scene.Node
		expected   *scene.Node
	}{
		{"A then B", []*scene.Node{a, b}, a},
		{"B then A", []*scene.Node{b, a}, b},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindOverlap(grip, tt.candidates); got != tt.expected {
				t.Errorf("FindOverlap returned %s, want %s", got.Name, tt.expected.Name)
			}
		})
	}
}

func TestFindOverlap_NoMatch(t *testing.T) {
	grip := createGrip(mgl64.Vec3{0, 1, 0}, 0.1)
	far := createTestBox("far", mgl64.Vec3{5, 1, 0}, 0.3)

	if got := FindOverlap(grip, []*scene.Node{far}); got != nil {
		t.Errorf("Expected nil, got %s", got.Name)
	}
	if got := FindOverlap(grip, nil); got != nil {
		t.Error("Expected nil for no candidates")
	}
}

func TestFindOverlap_SkipsContainersAndNil(t *testing.T) {
	grip := createGrip(mgl64.Vec3{0, 0, 0}, 0.5)
	container := scene.NewNode("group")
	die := createTestBox("die", mgl64.Vec3{0, 0, 0}, 0.3)

	if got := FindOverlap(grip, []*scene.Node{container, nil, die}); got != die {
		t.Errorf("Expected die after skipping container, got %v", got)
	}
}

func TestFindOverlap_GripWithoutShape(t *testing.T) {
	grip := scene.NewNode("grip")
	die := createTestBox("die", mgl64.Vec3{0, 0, 0}, 0.3)

	if got := FindOverlap(grip, []*scene.Node{die}); got != nil {
		t.Error("Grip without shape should never match")
	}
}

func TestFindOverlap_UsesCurrentWorldTransform(t *testing.T) {
	root := scene.NewNode("root")
	rig := scene.NewNode("rig")
	grip := createGrip(mgl64.Vec3{0, 0, 0}, 0.2)
	die := createTestBox("die", mgl64.Vec3{3, 0, 0}, 0.3)
	_ = root.Add(rig)
	_ = rig.Add(grip)
	_ = root.Add(die)

	if FindOverlap(grip, []*scene.Node{die}) != nil {
		t.Fatal("Should not overlap before the rig moves")
	}

	rig.SetPosition(mgl64.Vec3{3, 0, 0})
	if FindOverlap(grip, []*scene.Node{die}) != die {
		t.Error("Should overlap once the rig moved the grip onto the die")
	}
}

func TestFindOverlapBox_Skip(t *testing.T) {
	box := scene.NewAABBFromCenter(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})
	held := createTestBox("held", mgl64.Vec3{0, 0, 0}, 0.3)
	free := createTestBox("free", mgl64.Vec3{0.5, 0, 0}, 0.3)

	skip := func(n *scene.Node) bool { return n == held }
	if got := FindOverlapBox(box, []*scene.Node{held, free}, skip); got != free {
		t.Errorf("Expected free, got %v", got)
	}
}

// =============================================================================
// Index
// =============================================================================

func TestIndex_MatchesLinearScan(t *testing.T) {
	var candidates []*scene.Node
	for x := -5; x <= 5; x++ {
		for z := -5; z <= 5; z++ {
			candidates = append(candidates, createTestBox(fmt.Sprintf("die_%d_%d", x, z), mgl64.Vec3{float64(x), 1, float64(z)}, 0.2))
		}
	}
	// insert a container to make sure indices stay aligned
	candidates = append([]*scene.Node{scene.NewNode("group")}, candidates...)

	ix := NewIndex(1.0, 64, 0)

	grips := []mgl64.Vec3{
		{0, 1, 0},
		{2.5, 1, -3.5},
		{4.9, 1.1, 4.9},
		{20, 1, 0},
		{-0.5, 1, -0.5},
	}

	for _, position := range grips {
		box := scene.NewAABBFromCenter(position, mgl64.Vec3{0.4, 0.4, 0.4})
		linear := FindOverlapBox(box, candidates, nil)
		indexed := ix.FindOverlap(box, candidates, nil)
		if linear != indexed {
			t.Errorf("grip %v: indexed %v != linear %v", position, indexed, linear)
		}
	}
}

func TestIndex_BelowThresholdUsesLinearScan(t *testing.T) {
	ix := NewIndex(1.0, 16, 100)
	a := createTestBox("A", mgl64.Vec3{0, 0, 0}, 0.3)
	box := scene.NewAABBFromCenter(mgl64.Vec3{}, mgl64.Vec3{0.1, 0.1, 0.1})

	if ix.FindOverlap(box, []*scene.Node{a}, nil) != a {
		t.Error("Expected A")
	}
	if ix.FindOverlap(box, []*scene.Node{a}, func(*scene.Node) bool { return true }) != nil {
		t.Error("Skipped candidate should not match")
	}
}

func TestIndex_LargeCandidate(t *testing.T) {
	var candidates []*scene.Node
	for i := 0; i < 40; i++ {
		candidates = append(candidates, createTestBox(fmt.Sprintf("die_%d", i), mgl64.Vec3{float64(i), 1, 0}, 0.2))
	}
	table := scene.NewShapeNode("table", &scene.Box{HalfExtents: mgl64.Vec3{40, 40, 40}}, mgl64.Vec3{})
	candidates = append(candidates, table)

	// default tuning: the grid is used for 41 candidates
	ix := NewIndex(0.5, 256, 32)

	tests := []struct {
		name     string
		grip     mgl64.Vec3
		expected *scene.Node
	}{
		{"die wins by order", mgl64.Vec3{3, 1, 0}, candidates[3]},
		{"only the table", mgl64.Vec3{-35, 30, 35}, table},
		{"outside everything", mgl64.Vec3{100, 0, 0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := scene.NewAABBFromCenter(tt.grip, mgl64.Vec3{0.1, 0.1, 0.1})
			if got := ix.FindOverlap(box, candidates, nil); got != tt.expected {
				t.Errorf("FindOverlap(%v) = %v, want %v", tt.grip, got, tt.expected)
			}
		})
	}
}
