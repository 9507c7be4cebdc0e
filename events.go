package reach

import (
	"github.com/akmonengine/reach/offset"
	"github.com/akmonengine/reach/scene"
)

const (
	GRAB EventType = iota
	RELEASE
	HOVER_ENTER
	HOVER_EXIT
	CONNECT
	DISCONNECT
)

// hoverKey identifies a controller touching an interactable
type hoverKey struct {
	hand Hand
	node *scene.Node
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// GrabEvent is emitted when a controller picks up an object
type GrabEvent struct {
	Hand Hand
	Node *scene.Node
	// Offset is the pose of Node in the ray frame at grab time
	Offset offset.Offset
}

func (e GrabEvent) Type() EventType { return GRAB }

// ReleaseEvent is emitted when an object is let go.
// Forced is set when the release comes from a controller disconnect.
type ReleaseEvent struct {
	Hand   Hand
	Node   *scene.Node
	World  offset.World
	Forced bool
}

func (e ReleaseEvent) Type() EventType { return RELEASE }

type HoverEnterEvent struct {
	Hand Hand
	Node *scene.Node
}

func (e HoverEnterEvent) Type() EventType { return HOVER_ENTER }

type HoverExitEvent struct {
	Hand Hand
	Node *scene.Node
}

func (e HoverExitEvent) Type() EventType { return HOVER_EXIT }

type ConnectEvent struct {
	Hand Hand
}

func (e ConnectEvent) Type() EventType { return CONNECT }

type DisconnectEvent struct {
	Hand Hand
}

func (e DisconnectEvent) Type() EventType { return DISCONNECT }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// buffer collects events until flush; spare is the drained buffer,
	// reused by the next round
	buffer []Event
	spare  []Event

	// Hover pairs of the previous and current frame. The maps answer
	// membership, the slices keep detection order (hand, then scene order).
	previousHovers map[hoverKey]bool
	currentHovers  map[hoverKey]bool
	previousOrder  []hoverKey
	currentOrder   []hoverKey
}

func NewEvents() Events {
	return Events{
		listeners:      make(map[EventType][]EventListener),
		buffer:         make([]Event, 0, 16),
		spare:          make([]Event, 0, 16),
		previousHovers: make(map[hoverKey]bool),
		currentHovers:  make(map[hoverKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// recordHover is called once per frame for every controller/object overlap
func (e *Events) recordHover(hand Hand, node *scene.Node) {
	if e.currentHovers == nil {
		e.currentHovers = make(map[hoverKey]bool)
	}
	key := hoverKey{hand: hand, node: node}
	if e.currentHovers[key] {
		return
	}
	e.currentHovers[key] = true
	e.currentOrder = append(e.currentOrder, key)
}

// processHoverEvents compares current and previous overlaps to detect Enter/Exit.
// Enters follow this frame's detection order, exits the previous frame's.
func (e *Events) processHoverEvents() {
	for _, key := range e.currentOrder {
		if !e.previousHovers[key] {
			e.emit(HoverEnterEvent{Hand: key.hand, Node: key.node})
		}
	}
	for _, key := range e.previousOrder {
		if !e.currentHovers[key] {
			e.emit(HoverExitEvent{Hand: key.hand, Node: key.node})
		}
	}

	e.previousHovers, e.currentHovers = e.currentHovers, e.previousHovers
	e.previousOrder, e.currentOrder = e.currentOrder, e.previousOrder[:0]
	if e.currentHovers == nil {
		e.currentHovers = make(map[hoverKey]bool)
	}
	clear(e.currentHovers)
}

// flush delivers buffered events in emission order until none are left.
// Events a listener emits while being called join the next round of the
// same flush.
func (e *Events) flush() {
	for len(e.buffer) > 0 {
		pending := e.buffer
		e.buffer = e.spare[:0]

		for _, event := range pending {
			for _, listener := range e.listeners[event.Type()] {
				listener(event)
			}
		}

		clear(pending)
		e.spare = pending[:0]
	}
}
