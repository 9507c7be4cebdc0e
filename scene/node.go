package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// TagInteractable marks a node as eligible to be grabbed
const TagInteractable = "interactable"

// ErrCycle is returned when a node would become its own ancestor
var ErrCycle = errors.New("scene: node cannot be parented under itself or its descendant")

// Node is an element of the hierarchical transform tree.
// A node without Shape is a container: it has no bounding volume of its own.
type Node struct {
	Name  string
	Shape Shape

	local    Transform
	parent   *Node
	children []*Node
	tags     map[string]struct{}

	revision uint64

	worldDirty  bool
	worldMatrix mgl64.Mat4
}

// NewNode creates a detached node with an identity transform
func NewNode(name string) *Node {
	return &Node{
		Name:       name,
		local:      NewTransform(),
		worldDirty: true,
	}
}

// NewShapeNode creates a detached renderable leaf at the given local position
func NewShapeNode(name string, shape Shape, position mgl64.Vec3) *Node {
	n := NewNode(name)
	n.Shape = shape
	n.local.Position = position
	return n
}

// ============================================================================
// Local transform
// ============================================================================

func (n *Node) Local() Transform {
	return n.local
}

// SetLocal replaces the transform relative to the parent
func (n *Node) SetLocal(t Transform) {
	n.local = t.normalized()
	n.touch()
}

func (n *Node) Position() mgl64.Vec3 {
	return n.local.Position
}

func (n *Node) SetPosition(position mgl64.Vec3) {
	n.local.Position = position
	n.touch()
}

func (n *Node) Rotation() mgl64.Quat {
	return n.local.Rotation
}

func (n *Node) SetRotation(rotation mgl64.Quat) {
	n.local.Rotation = rotation.Normalize()
	n.touch()
}

func (n *Node) Scale() mgl64.Vec3 {
	return n.local.Scale
}

func (n *Node) SetScale(scale mgl64.Vec3) {
	n.local.Scale = scale
	n.touch()
}

// Revision is incremented by every local transform write and every reparent
func (n *Node) Revision() uint64 {
	return n.revision
}

func (n *Node) touch() {
	n.revision++
	n.markWorldDirty()
}

func (n *Node) markWorldDirty() {
	n.worldDirty = true
	for _, child := range n.children {
		child.markWorldDirty()
	}
}

// ============================================================================
// Hierarchy
// ============================================================================

func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the ordered child list
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add reparents child under n, detaching it from its previous parent first.
// The local transform of child is preserved, so its world transform changes
// to follow the new ancestor chain.
func (n *Node) Add(child *Node) error {
	if child == nil {
		return errors.New("scene: cannot add a nil node")
	}
	if child == n || child.IsAncestorOf(n) {
		return errors.Wrapf(ErrCycle, "adding %q under %q", child.Name, n.Name)
	}

	if child.parent != nil {
		child.parent.detach(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	child.touch()

	return nil
}

// Remove detaches child from n. It reports false if child was not a direct child.
func (n *Node) Remove(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	n.detach(child)
	child.parent = nil
	child.touch()

	return true
}

func (n *Node) detach(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Root returns the top-most ancestor of n (n itself when detached)
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// IsAncestorOf reports whether n is a strict ancestor of other
func (n *Node) IsAncestorOf(other *Node) bool {
	if other == nil {
		return false
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first in child order.
// Returning false from fn skips the subtree of the visited node.
func (n *Node) Walk(fn func(node *Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// ============================================================================
// Tags
// ============================================================================

func (n *Node) SetTag(tag string) {
	if n.tags == nil {
		n.tags = make(map[string]struct{})
	}
	n.tags[tag] = struct{}{}
}

func (n *Node) ClearTag(tag string) {
	delete(n.tags, tag)
}

func (n *Node) HasTag(tag string) bool {
	_, ok := n.tags[tag]
	return ok
}

// Tagged collects n and its descendants carrying tag, in traversal order
func (n *Node) Tagged(tag string) []*Node {
	var nodes []*Node
	n.Walk(func(node *Node) bool {
		if node.HasTag(tag) {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// ============================================================================
// World transform
// ============================================================================

// WorldMatrix composes the local transform with all ancestors
func (n *Node) WorldMatrix() mgl64.Mat4 {
	if n.worldDirty {
		local := n.local.Mat4()
		if n.parent != nil {
			n.worldMatrix = n.parent.WorldMatrix().Mul4(local)
		} else {
			n.worldMatrix = local
		}
		n.worldDirty = false
	}
	return n.worldMatrix
}

func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// WorldRotation composes orientations up the ancestor chain as quaternions
func (n *Node) WorldRotation() mgl64.Quat {
	rotation := n.local.Rotation
	for p := n.parent; p != nil; p = p.parent {
		rotation = p.local.Rotation.Mul(rotation)
	}
	return rotation.Normalize()
}

// WorldScale multiplies scales up the ancestor chain.
// Exact for uniform scales; shear from rotated non-uniform parents is ignored.
func (n *Node) WorldScale() mgl64.Vec3 {
	scale := n.local.Scale
	for p := n.parent; p != nil; p = p.parent {
		scale = mgl64.Vec3{scale[0] * p.local.Scale[0], scale[1] * p.local.Scale[1], scale[2] * p.local.Scale[2]}
	}
	return scale
}

// WorldAABB computes the bounding volume from the current world transform.
// It reports false for container nodes without a shape.
func (n *Node) WorldAABB() (AABB, bool) {
	if n.Shape == nil {
		return AABB{}, false
	}
	return n.Shape.ComputeAABB(n.WorldMatrix()), true
}
