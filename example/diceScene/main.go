package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/reach"
	"github.com/akmonengine/reach/config"
	"github.com/akmonengine/reach/input"
	"github.com/akmonengine/reach/jump"
	"github.com/akmonengine/reach/scene"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl64"
)

// Session is a headless stand-in for the render loop: it moves the tracked
// controllers along a script and samples their buttons once per frame.
type Session struct {
	System *reach.System
	Rig    *scene.Node
	Left   *reach.Controller
	Right  *reach.Controller
	Dice   []*scene.Node

	hop       jump.Hop
	jumpInput input.Button
	restY     float64
}

// SetupScene creates a floor, a table with three dice and a player rig
// carrying both controllers
func SetupScene(cfg config.Config, logger *slog.Logger) (*Session, error) {
	root := scene.NewNode("scene")

	system, err := reach.NewSystem(root, cfg, logger)
	if err != nil {
		return nil, err
	}

	floor := scene.NewShapeNode("floor", &scene.Box{HalfExtents: mgl64.Vec3{5, 0.01, 5}}, mgl64.Vec3{0, 0, 0})
	table := scene.NewShapeNode("table", &scene.Box{HalfExtents: mgl64.Vec3{0.6, 0.02, 0.4}}, mgl64.Vec3{0, 0.9, -0.8})
	rig := scene.NewNode("rig")
	for _, n := range []*scene.Node{floor, table, rig} {
		if err := root.Add(n); err != nil {
			return nil, err
		}
	}

	s := &Session{
		System:    system,
		Rig:       rig,
		jumpInput: cfg.JumpInput(),
		hop: jump.Hop{
			Height: cfg.Jump.Height,
			Rise:   cfg.Jump.Rise,
			Fall:   cfg.Jump.Fall,
		},
	}

	for i := 0; i < 3; i++ {
		die := scene.NewShapeNode(fmt.Sprintf("die-%d", i+1), &scene.Box{HalfExtents: mgl64.Vec3{0.05, 0.05, 0.05}}, mgl64.Vec3{-0.3 + 0.3*float64(i), 0.07, 0})
		die.SetTag(scene.TagInteractable)
		if err := table.Add(die); err != nil {
			return nil, err
		}
		s.Dice = append(s.Dice, die)
	}

	s.Left = reach.NewController(reach.Left)
	s.Right = reach.NewController(reach.Right)
	for _, c := range []*reach.Controller{s.Left, s.Right} {
		c.GripSpace.Shape = &scene.Box{HalfExtents: mgl64.Vec3{0.04, 0.04, 0.06}}
		if err := rig.Add(c.RaySpace); err != nil {
			return nil, err
		}
		if err := rig.Add(c.GripSpace); err != nil {
			return nil, err
		}
		if err := system.Connect(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Track places both frames of a controller at a rig-relative pose
func Track(c *reach.Controller, position mgl64.Vec3, rotation mgl64.Quat) {
	c.RaySpace.SetPosition(position)
	c.RaySpace.SetRotation(rotation)
	c.GripSpace.SetPosition(position)
	c.GripSpace.SetRotation(rotation)
}

// Frame samples the buttons, advances the grab system and the hop
func (s *Session) Frame(dt float64, left, right []input.Button) {
	s.Left.Gamepad.Sample(left...)
	s.Right.Gamepad.Sample(right...)

	if s.Left.Gamepad.Down(s.jumpInput) || s.Right.Gamepad.Down(s.jumpInput) {
		s.hop.Start()
	}
	if s.hop.Phase() != jump.Idle {
		position := s.Rig.Position()
		position[1] = s.restY + s.hop.Advance(dt)
		s.Rig.SetPosition(position)
	}

	s.System.Step()
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			logger.Error("loading config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	session, err := SetupScene(cfg, logger)
	if err != nil {
		logger.Error("setting up scene", "err", err)
		os.Exit(1)
	}

	session.System.TrackHover = true
	session.System.Events.Subscribe(reach.GRAB, func(e reach.Event) {
		grab := e.(reach.GrabEvent)
		fmt.Printf("%s hand grabbed %s, offset in ray frame:\n%s", grab.Hand, grab.Node.Name, spew.Sdump(grab.Offset.Position))
	})
	session.System.Events.Subscribe(reach.RELEASE, func(e reach.Event) {
		release := e.(reach.ReleaseEvent)
		fmt.Printf("%s hand released %s at %v (forced=%v)\n", release.Hand, release.Node.Name, release.World.Position, release.Forced)
	})
	session.System.Events.Subscribe(reach.HOVER_ENTER, func(e reach.Event) {
		hover := e.(reach.HoverEnterEvent)
		fmt.Printf("%s hand touches %s\n", hover.Hand, hover.Node.Name)
	})

	const dt = 1.0 / 72.0
	grab := []input.Button{cfg.GrabInput()}
	hop := []input.Button{cfg.JumpInput()}

	Track(session.Left, mgl64.Vec3{-0.3, 1.2, -0.2}, mgl64.QuatIdent())
	Track(session.Right, mgl64.Vec3{0.3, 1.2, -0.2}, mgl64.QuatIdent())
	session.Frame(dt, nil, nil)

	// right hand reaches for the last die and squeezes
	Track(session.Right, session.Dice[2].WorldPosition(), mgl64.QuatIdent())
	session.Frame(dt, nil, nil)
	session.Frame(dt, nil, grab)

	// carry it over the floor while turning the wrist, jumping on the way
	turn := mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0})
	for i := 1; i <= 30; i++ {
		t := float64(i) / 30
		position := session.Dice[2].Parent().Position().Add(mgl64.Vec3{0.02, 0, 0.01})
		Track(session.Right, position, mgl64.QuatSlerp(mgl64.QuatIdent(), turn, t))
		if i == 5 {
			session.Frame(dt, hop, grab)
			continue
		}
		session.Frame(dt, nil, grab)
	}
	session.Frame(dt, nil, nil)

	// left hand picks the first die, then the controller drops out
	Track(session.Left, session.Dice[0].WorldPosition(), mgl64.QuatIdent())
	session.Frame(dt, grab, nil)
	session.System.Disconnect(reach.Left)
	session.Frame(dt, nil, nil)

	fmt.Println("final state:")
	for _, die := range session.Dice {
		fmt.Printf("  %s under %s at %v\n", die.Name, die.Parent().Name, die.WorldPosition())
	}
}
