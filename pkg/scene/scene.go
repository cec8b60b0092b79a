// Package scene holds the node tree: an arena of nodes addressed by NodeID,
// traversed depth-first to produce world matrices.
package scene

import (
	"errors"
	"fmt"

	"github.com/taigrr/sloth/pkg/math3d"
)

var (
	ErrUnknownNode     = errors.New("unknown node")
	ErrNodeHasChildren = errors.New("node already has children")
)

// Root is the id of the root node created by New.
const Root NodeID = 0

// Scene owns every node. Nodes refer to each other by id, so a node can
// only ever have one parent.
type Scene struct {
	nodes    []Node
	handlers map[HandlerID]Handler
	orbits   map[NodeID]*OrbitControl
}

// New creates a scene containing only an empty root group.
func New() *Scene {
	root := NewNode("root", GroupPayload())
	root.parent = Root
	return &Scene{
		nodes:    []Node{root},
		handlers: make(map[HandlerID]Handler),
		orbits:   make(map[NodeID]*OrbitControl),
	}
}

// AddChild appends n under parent and returns its id. n must be fresh:
// children are attached by further AddChild calls.
func (s *Scene) AddChild(parent NodeID, n Node) (NodeID, error) {
	if !s.valid(parent) {
		return 0, fmt.Errorf("parent %d: %w", parent, ErrUnknownNode)
	}
	if len(n.Children) > 0 {
		return 0, fmt.Errorf("add %q: %w", n.Name, ErrNodeHasChildren)
	}

	id := NodeID(len(s.nodes))
	n.parent = parent
	s.nodes = append(s.nodes, n)
	s.nodes[parent].Children = append(s.nodes[parent].Children, id)
	return id, nil
}

// Node returns a pointer to the node for in-place edits of its transform,
// payload or behavior. The pointer is invalidated by AddChild.
func (s *Scene) Node(id NodeID) (*Node, error) {
	if !s.valid(id) {
		return nil, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	return &s.nodes[id], nil
}

// Len returns the number of nodes, root included.
func (s *Scene) Len() int {
	return len(s.nodes)
}

func (s *Scene) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(s.nodes)
}

type frame struct {
	id    NodeID
	world math3d.Mat4
}

// Traverse visits root and its descendants depth-first in pre-order with
// world = parentWorld × local. Children are visited in insertion order.
// The first error returned by visit stops the walk and is returned.
func (s *Scene) Traverse(root NodeID, parentWorld math3d.Mat4, visit func(n *Node, world math3d.Mat4) error) error {
	if !s.valid(root) {
		return fmt.Errorf("traverse from %d: %w", root, ErrUnknownNode)
	}

	stack := []frame{{root, parentWorld.Mul(s.nodes[root].Transform.Matrix())}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &s.nodes[f.id]
		if err := visit(n, f.world); err != nil {
			return err
		}

		// Push in reverse so the first child is popped first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			stack = append(stack, frame{c, f.world.Mul(s.nodes[c].Transform.Matrix())})
		}
	}
	return nil
}

// errLightFound ends the FirstLight walk early.
var errLightFound = errors.New("light found")

// FirstLight returns the world-space direction of the first light node in
// traversal order. found is false when the scene has no light.
func (s *Scene) FirstLight() (dir math3d.Vec3, found bool, err error) {
	err = s.Traverse(Root, math3d.Identity(), func(n *Node, world math3d.Mat4) error {
		if n.Payload.Kind != KindLight {
			return nil
		}
		dir = world.MulVec3Dir(n.Payload.LightDir).Normalize()
		return errLightFound
	})
	switch {
	case errors.Is(err, errLightFound):
		return dir, true, nil
	case err != nil:
		return math3d.Vec3{}, false, fmt.Errorf("first light: %w", err)
	}
	return math3d.Vec3{}, false, nil
}

// Find returns the id of the first node with the given name in arena order.
func (s *Scene) Find(name string) (NodeID, bool) {
	for i := range s.nodes {
		if s.nodes[i].Name == name {
			return NodeID(i), true
		}
	}
	return 0, false
}
