// Package input samples controller buttons once per frame and exposes edge
// (Down, Up) and level (Pressed) views of each button.
package input

import (
	"strings"

	"github.com/pkg/errors"
)

// Button identifies a physical control on a tracked controller
type Button uint8

const (
	Trigger Button = iota
	Squeeze
	Thumbstick
	ButtonA
	ButtonB
	buttonCount
)

var buttonNames = [buttonCount]string{
	Trigger:    "trigger",
	Squeeze:    "squeeze",
	Thumbstick: "thumbstick",
	ButtonA:    "a",
	ButtonB:    "b",
}

func (b Button) String() string {
	if b < buttonCount {
		return buttonNames[b]
	}
	return "unknown"
}

// ParseButton resolves a button from its configuration name, case-insensitively
func ParseButton(name string) (Button, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range buttonNames {
		if n == name {
			return Button(b), nil
		}
	}
	return 0, errors.Errorf("input: unknown button %q", name)
}

// Gamepad holds the current and previous frame state of every button
type Gamepad struct {
	current  [buttonCount]bool
	previous [buttonCount]bool
	frame    uint64
}

// NewGamepad returns a gamepad with every button released
func NewGamepad() *Gamepad {
	return &Gamepad{}
}

// BeginFrame moves the current state to the previous frame.
// Buttons keep their level until Set changes them.
func (g *Gamepad) BeginFrame() {
	g.previous = g.current
	g.frame++
}

// Set records the level of a button for the current frame
func (g *Gamepad) Set(b Button, pressed bool) {
	if b < buttonCount {
		g.current[b] = pressed
	}
}

// Sample starts a new frame where exactly the given buttons are pressed
func (g *Gamepad) Sample(pressed ...Button) {
	g.BeginFrame()
	g.current = [buttonCount]bool{}
	for _, b := range pressed {
		g.Set(b, true)
	}
}

// Down is true only on the frame the button goes from released to pressed
func (g *Gamepad) Down(b Button) bool {
	return b < buttonCount && g.current[b] && !g.previous[b]
}

// Pressed is true for every frame the button is held
func (g *Gamepad) Pressed(b Button) bool {
	return b < buttonCount && g.current[b]
}

// Up is true only on the frame the button is released
func (g *Gamepad) Up(b Button) bool {
	return b < buttonCount && !g.current[b] && g.previous[b]
}

// Frame counts the frames sampled so far
func (g *Gamepad) Frame() uint64 {
	return g.frame
}
