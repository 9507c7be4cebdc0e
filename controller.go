package reach

import (
	"github.com/akmonengine/reach/input"
	"github.com/akmonengine/reach/scene"
)

// Hand identifies a tracked controller
type Hand uint8

const (
	Left Hand = iota
	Right
	handCount
)

func (h Hand) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// State of the grab machine of one controller
type State uint8

const (
	Free State = iota
	Holding
)

func (s State) String() string {
	if s == Holding {
		return "holding"
	}
	return "free"
}

// Controller is one tracked hand.
// RaySpace is the frame held objects are parented to; GripSpace is the
// physical grip whose volume is tested against interactables.
type Controller struct {
	Hand      Hand
	RaySpace  *scene.Node
	GripSpace *scene.Node
	Gamepad   *input.Gamepad
}

// NewController creates a controller with fresh ray and grip nodes.
// The caller attaches both to the scene and keeps them tracked.
func NewController(hand Hand) *Controller {
	return &Controller{
		Hand:      hand,
		RaySpace:  scene.NewNode(hand.String() + "-ray"),
		GripSpace: scene.NewNode(hand.String() + "-grip"),
		Gamepad:   input.NewGamepad(),
	}
}

// grab is the record kept while a controller holds an object
type grab struct {
	item *scene.Node
	// parent is where the item returns on release
	parent *scene.Node
}
