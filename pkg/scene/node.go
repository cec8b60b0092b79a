package scene

import (
	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/texture"
)

// NodeID indexes a node in its Scene.
type NodeID int

// Kind selects which Payload fields are meaningful.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLight
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Payload is what a node carries. Only the fields for Kind are read.
type Payload struct {
	Kind     Kind
	Mesh     models.MeshID
	Texture  texture.ID
	LightDir math3d.Vec3
	Camera   camera.ID
}

// GroupPayload returns an empty payload; the node only carries a transform.
func GroupPayload() Payload {
	return Payload{Kind: KindGroup}
}

// MeshPayload references a mesh drawn with a texture.
func MeshPayload(mesh models.MeshID, tex texture.ID) Payload {
	return Payload{Kind: KindMesh, Mesh: mesh, Texture: tex}
}

// LightPayload describes a directional light.
func LightPayload(dir math3d.Vec3) Payload {
	return Payload{Kind: KindLight, LightDir: dir}
}

// CameraPayload references a camera in a camera.Store.
func CameraPayload(id camera.ID) Payload {
	return Payload{Kind: KindCamera, Camera: id}
}

// Transform is a node's local placement relative to its parent.
type Transform struct {
	Translation math3d.Vec3
	Rotation    math3d.Vec3 // Euler angles in radians, applied X then Y then Z
	Scale       math3d.Vec3

	// Override, when set, replaces the composed matrix.
	Override *math3d.Mat4
}

// IdentityTransform returns a transform with unit scale and no motion.
func IdentityTransform() Transform {
	return Transform{Scale: math3d.One3()}
}

// Matrix returns the local matrix T · Rz · Ry · Rx · S.
func (t Transform) Matrix() math3d.Mat4 {
	if t.Override != nil {
		return *t.Override
	}
	return math3d.Compose(t.Translation, t.Rotation, t.Scale)
}

// Node is one element of the scene tree.
type Node struct {
	Name      string
	Transform Transform
	Payload   Payload
	Behavior  Behavior
	Children  []NodeID

	parent NodeID
}

// NewNode creates a node with an identity transform.
func NewNode(name string, p Payload) Node {
	return Node{Name: name, Transform: IdentityTransform(), Payload: p}
}

// Parent returns the parent id. The root is its own parent.
func (n *Node) Parent() NodeID {
	return n.parent
}
