package scene

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/sloth/pkg/camera"
)

var (
	ErrUnknownHandler = errors.New("unknown behavior handler")
	ErrNotCamera      = errors.New("camera control on non-camera node")
)

// BehaviorKind selects how Update treats a node.
type BehaviorKind int

const (
	BehaviorNone BehaviorKind = iota
	BehaviorStandardCameraControl
	BehaviorCustom
)

// HandlerID names a custom handler registered with RegisterHandler.
type HandlerID uint32

// Behavior attaches per-frame logic to a node.
type Behavior struct {
	Kind    BehaviorKind
	Handler HandlerID // used when Kind is BehaviorCustom
}

// Input is one frame of user intent. Axes are in [-1, 1].
type Input struct {
	Yaw   float64
	Pitch float64
	Zoom  float64

	Forward float64
	Right   float64
	Up      float64
}

// Handler runs a custom behavior for one node.
type Handler func(n *Node, in Input, dt float64, cams *camera.Store) error

// RegisterHandler installs h under id, replacing any previous handler.
func (s *Scene) RegisterHandler(id HandlerID, h Handler) {
	s.handlers[id] = h
}

// Update runs every node's behavior once, in arena order. It is the only
// place nodes and cameras change during a frame, and it must not overlap a
// render of the same scene.
func (s *Scene) Update(dt float64, in Input, cams *camera.Store) error {
	for i := range s.nodes {
		n := &s.nodes[i]
		switch n.Behavior.Kind {
		case BehaviorNone:
		case BehaviorStandardCameraControl:
			if err := s.updateCamera(NodeID(i), n, in, dt, cams); err != nil {
				return err
			}
		case BehaviorCustom:
			h, ok := s.handlers[n.Behavior.Handler]
			if !ok {
				return fmt.Errorf("node %q handler %d: %w", n.Name, n.Behavior.Handler, ErrUnknownHandler)
			}
			if err := h(n, in, dt, cams); err != nil {
				return fmt.Errorf("node %q: %w", n.Name, err)
			}
		}
	}
	return nil
}

// updateCamera orbits the node's camera around its target. Movement axes
// translate camera and target together.
func (s *Scene) updateCamera(id NodeID, n *Node, in Input, dt float64, cams *camera.Store) error {
	if n.Payload.Kind != KindCamera {
		return fmt.Errorf("node %q is %s: %w", n.Name, n.Payload.Kind, ErrNotCamera)
	}
	cam, err := cams.Get(n.Payload.Camera)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.Name, err)
	}

	oc, ok := s.orbits[id]
	if !ok {
		oc = NewOrbitControl(cam, DefaultFPS)
		s.orbits[id] = oc
	}

	const moveSpeed = 5.0
	cam.MoveForward(in.Forward * moveSpeed * dt)
	cam.MoveRight(in.Right * moveSpeed * dt)
	cam.MoveUp(in.Up * moveSpeed * dt)

	oc.Impulse(in.Yaw*dt, in.Pitch*dt, in.Zoom*dt)
	oc.Update()
	oc.Apply(cam)
	return nil
}

// DefaultFPS is the update rate the orbit springs are tuned for.
const DefaultFPS = 60

// Axis tracks position and velocity for one orbit axis with spring decay.
type Axis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewAxis creates an axis with a harmonica spring for smooth velocity decay.
func NewAxis(fps int, position float64) Axis {
	return Axis{
		Position:  position,
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// OrbitControl smooths yaw, pitch and distance around a camera's target.
type OrbitControl struct {
	Yaw      Axis
	Pitch    Axis
	Distance Axis

	MinDistance float64
}

// NewOrbitControl starts from the camera's current placement.
func NewOrbitControl(cam *camera.Camera, fps int) *OrbitControl {
	yaw, pitch, dist := cam.OrbitAngles()
	return &OrbitControl{
		Yaw:         NewAxis(fps, yaw),
		Pitch:       NewAxis(fps, pitch),
		Distance:    NewAxis(fps, dist),
		MinDistance: 0.1,
	}
}

// Impulse adds velocity to each axis. Positive zoom moves closer.
func (o *OrbitControl) Impulse(yaw, pitch, zoom float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
	o.Distance.Velocity -= zoom
}

// Update advances all three springs by one frame.
func (o *OrbitControl) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Distance.Update()
	if o.Distance.Position < o.MinDistance {
		o.Distance.Position = o.MinDistance
		o.Distance.Velocity = 0
	}
}

// Apply places cam on the orbit.
func (o *OrbitControl) Apply(cam *camera.Camera) {
	cam.Orbit(o.Yaw.Position, o.Pitch.Position, o.Distance.Position)
}
