// Package reach lets tracked hand controllers pick up, carry and drop
// interactable scene nodes, advanced once per rendered frame.
package reach

import (
	"log/slog"

	"github.com/akmonengine/reach/config"
	"github.com/akmonengine/reach/input"
	"github.com/akmonengine/reach/offset"
	"github.com/akmonengine/reach/scene"
	"github.com/akmonengine/reach/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// System owns the grab state of every controller.
// It is driven from a single render loop and is not safe for concurrent use.
type System struct {
	// Scene is the top-level node interactables are discovered under
	Scene  *scene.Node
	Logger *slog.Logger
	Events Events
	// TrackHover enables HOVER_ENTER/HOVER_EXIT events
	TrackHover bool

	controllers [handCount]*Controller
	grabs       [handCount]*grab
	heldBy      map[*scene.Node]Hand

	index        *spatial.Index
	grabButton   input.Button
	gripFallback mgl64.Vec3
	frame        uint64
}

// NewSystem creates a grab system over root. A nil logger uses slog.Default().
func NewSystem(root *scene.Node, cfg config.Config, logger *slog.Logger) (*System, error) {
	if root == nil {
		return nil, errors.New("reach: scene root is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &System{
		Scene:        root,
		Logger:       logger,
		Events:       NewEvents(),
		heldBy:       make(map[*scene.Node]Hand),
		index:        spatial.NewIndex(cfg.GridCellSize, cfg.GridCells, cfg.GridThreshold),
		grabButton:   cfg.GrabInput(),
		gripFallback: mgl64.Vec3(cfg.GripHalfExtents),
	}, nil
}

// ============================================================================
// Controllers
// ============================================================================

// Connect registers a controller. Only one controller per hand may be connected.
func (s *System) Connect(c *Controller) error {
	if c == nil {
		return errors.New("reach: nil controller")
	}
	if c.Hand >= handCount {
		return errors.Errorf("reach: invalid hand %d", c.Hand)
	}
	if c.RaySpace == nil || c.GripSpace == nil {
		return errors.Errorf("reach: %s controller needs both ray and grip spaces", c.Hand)
	}
	if s.controllers[c.Hand] != nil {
		return errors.Errorf("reach: %s controller already connected", c.Hand)
	}
	if c.Gamepad == nil {
		c.Gamepad = input.NewGamepad()
	}

	s.controllers[c.Hand] = c
	s.Events.emit(ConnectEvent{Hand: c.Hand})
	s.Logger.Info("controller connected", "hand", c.Hand)

	return nil
}

// Disconnect drops the controller of hand, releasing what it holds first.
// Events are delivered by the next Step.
func (s *System) Disconnect(hand Hand) {
	if hand >= handCount || s.controllers[hand] == nil {
		return
	}
	if s.grabs[hand] != nil {
		s.Logger.Warn("controller disconnected while holding, releasing", "hand", hand, "node", s.grabs[hand].item.Name)
		s.release(hand, true)
	}

	s.controllers[hand] = nil
	s.Events.emit(DisconnectEvent{Hand: hand})
	s.Logger.Info("controller disconnected", "hand", hand)
}

func (s *System) Controller(hand Hand) *Controller {
	if hand >= handCount {
		return nil
	}
	return s.controllers[hand]
}

// ============================================================================
// State queries
// ============================================================================

// Held returns the object held by hand, or nil
func (s *System) Held(hand Hand) *scene.Node {
	if hand >= handCount || s.grabs[hand] == nil {
		return nil
	}
	return s.grabs[hand].item
}

// HeldBy reports which controller holds node
func (s *System) HeldBy(node *scene.Node) (Hand, bool) {
	hand, ok := s.heldBy[node]
	return hand, ok
}

func (s *System) State(hand Hand) State {
	if s.Held(hand) != nil {
		return Holding
	}
	return Free
}

// Frame counts the calls to Step
func (s *System) Frame() uint64 {
	return s.frame
}

// ============================================================================
// Frame
// ============================================================================

// Step advances every connected controller by one frame, left before right.
// Gamepads must already hold this frame's samples.
func (s *System) Step() {
	s.frame++

	for hand := Left; hand < handCount; hand++ {
		c := s.controllers[hand]
		if c == nil {
			continue
		}

		g := s.grabs[hand]
		switch {
		case g == nil && c.Gamepad.Down(s.grabButton):
			s.tryGrab(c)
		case g != nil && !c.Gamepad.Pressed(s.grabButton):
			s.release(hand, false)
		}
	}

	if s.TrackHover {
		s.trackHover()
	}
	s.Events.flush()
}

func (s *System) tryGrab(c *Controller) {
	candidates := s.Scene.Tagged(scene.TagInteractable)
	target := s.index.FindOverlap(s.gripVolume(c), candidates, s.excluded(c))
	if target == nil {
		s.Logger.Debug("grab: nothing in reach", "hand", c.Hand, "candidates", len(candidates))
		return
	}

	o := offset.Capture(c.RaySpace, target)
	previous := target.Parent()
	if err := c.RaySpace.Add(target); err != nil {
		s.Logger.Error("grab: reparent failed", "hand", c.Hand, "node", target.Name, "err", err)
		return
	}
	offset.Apply(target, o)

	s.grabs[c.Hand] = &grab{item: target, parent: previous}
	s.heldBy[target] = c.Hand
	s.Events.emit(GrabEvent{Hand: c.Hand, Node: target, Offset: o})
	s.Logger.Debug("grab", "hand", c.Hand, "node", target.Name, "offset", o.Position)
}

// release puts the held object back under its previous parent at its
// current world pose
func (s *System) release(hand Hand, forced bool) {
	g := s.grabs[hand]
	world := offset.CaptureWorld(g.item)

	parent := g.parent
	if !s.attached(parent) {
		parent = s.Scene
	}
	if err := parent.Add(g.item); err != nil {
		s.Logger.Error("release: reparent failed, using scene root", "hand", hand, "node", g.item.Name, "err", err)
		parent = s.Scene
		if err := parent.Add(g.item); err != nil {
			s.Logger.Error("release: scene root rejected node", "hand", hand, "node", g.item.Name, "err", err)
		}
	}
	offset.Apply(g.item, world.In(parent))

	s.grabs[hand] = nil
	delete(s.heldBy, g.item)
	s.Events.emit(ReleaseEvent{Hand: hand, Node: g.item, World: world, Forced: forced})
	s.Logger.Debug("release", "hand", hand, "node", g.item.Name, "forced", forced, "position", world.Position)
}

// attached reports whether node is the scene root or one of its descendants
func (s *System) attached(node *scene.Node) bool {
	return node != nil && (node == s.Scene || s.Scene.IsAncestorOf(node))
}

// gripVolume is the world AABB of the grip, or the configured box around it
func (s *System) gripVolume(c *Controller) scene.AABB {
	if aabb, ok := c.GripSpace.WorldAABB(); ok {
		return aabb
	}
	return scene.NewAABBFromCenter(c.GripSpace.WorldPosition(), s.gripFallback)
}

// excluded filters objects already held by any controller, and nodes that
// contain the controller itself
func (s *System) excluded(c *Controller) func(*scene.Node) bool {
	return func(node *scene.Node) bool {
		if _, held := s.heldBy[node]; held {
			return true
		}
		return node == c.RaySpace || node.IsAncestorOf(c.RaySpace)
	}
}

func (s *System) trackHover() {
	var candidates []*scene.Node

	for hand := Left; hand < handCount; hand++ {
		c := s.controllers[hand]
		if c == nil || s.grabs[hand] != nil {
			continue
		}
		if candidates == nil {
			candidates = s.Scene.Tagged(scene.TagInteractable)
		}

		box := s.gripVolume(c)
		skip := s.excluded(c)
		for _, node := range candidates {
			if skip(node) {
				continue
			}
			if aabb, ok := node.WorldAABB(); ok && box.Overlaps(aabb) {
				s.Events.recordHover(hand, node)
			}
		}
	}

	s.Events.processHoverEvents()
}
