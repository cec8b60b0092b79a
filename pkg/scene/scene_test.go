package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
)

func translated(name string, v math3d.Vec3) Node {
	n := NewNode(name, GroupPayload())
	n.Transform.Translation = v
	return n
}

// createTestScene builds root -> a -> b and root -> c.
func createTestScene(t *testing.T) (*Scene, NodeID, NodeID, NodeID) {
	t.Helper()
	s := New()
	a, err := s.AddChild(Root, translated("a", math3d.V3(1, 0, 0)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.AddChild(a, translated("b", math3d.V3(0, 2, 0)))
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.AddChild(Root, translated("c", math3d.V3(0, 0, 3)))
	if err != nil {
		t.Fatal(err)
	}
	return s, a, b, c
}

func TestTraversePreOrder(t *testing.T) {
	s, _, _, _ := createTestScene(t)

	var order []string
	err := s.Traverse(Root, math3d.Identity(), func(n *Node, _ math3d.Mat4) error {
		order = append(order, n.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	want := []string{"root", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
}

func TestTraverseWorldMatrices(t *testing.T) {
	s, a, b, _ := createTestScene(t)

	rootNode, _ := s.Node(Root)
	rootNode.Transform.Scale = math3d.V3(2, 2, 2)

	worlds := map[string]math3d.Mat4{}
	_ = s.Traverse(Root, math3d.Identity(), func(n *Node, w math3d.Mat4) error {
		worlds[n.Name] = w
		return nil
	})

	na, _ := s.Node(a)
	nb, _ := s.Node(b)
	want := rootNode.Transform.Matrix().Mul(na.Transform.Matrix()).Mul(nb.Transform.Matrix())
	if !worlds["b"].ApproxEqual(want, 1e-12) {
		t.Errorf("world(b) = %v, want T_root*T_a*T_b = %v", worlds["b"], want)
	}
	if got := worlds["b"].MulVec3(math3d.Zero3()); got != math3d.V3(2, 4, 0) {
		t.Errorf("origin of b in world = %v, want (2,4,0)", got)
	}
}

func TestTraverseParentWorld(t *testing.T) {
	s, a, _, _ := createTestScene(t)
	parent := math3d.Translate(math3d.V3(0, 0, -10))

	var got math3d.Mat4
	_ = s.Traverse(a, parent, func(n *Node, w math3d.Mat4) error {
		if n.Name == "a" {
			got = w
		}
		return nil
	})
	if p := got.MulVec3(math3d.Zero3()); p != math3d.V3(1, 0, -10) {
		t.Errorf("a origin = %v, want (1,0,-10)", p)
	}
}

func TestTraverseStopsOnError(t *testing.T) {
	s, _, _, _ := createTestScene(t)
	boom := errors.New("boom")

	visited := 0
	err := s.Traverse(Root, math3d.Identity(), func(n *Node, _ math3d.Mat4) error {
		visited++
		if n.Name == "a" {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if visited != 2 {
		t.Errorf("visited %d nodes, want 2", visited)
	}
}

func TestAddChildErrors(t *testing.T) {
	s := New()
	if _, err := s.AddChild(42, NewNode("x", GroupPayload())); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown parent err = %v", err)
	}

	n := NewNode("x", GroupPayload())
	n.Children = []NodeID{0}
	if _, err := s.AddChild(Root, n); !errors.Is(err, ErrNodeHasChildren) {
		t.Errorf("pre-linked node err = %v", err)
	}
	if err := s.Traverse(9, math3d.Identity(), nil); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Traverse(9) err = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after failed adds, want 1", s.Len())
	}
}

func TestParentAndFind(t *testing.T) {
	s, a, b, _ := createTestScene(t)
	nb, _ := s.Node(b)
	if nb.Parent() != a {
		t.Errorf("Parent(b) = %d, want %d", nb.Parent(), a)
	}
	if id, ok := s.Find("b"); !ok || id != b {
		t.Errorf("Find(b) = %d, %v", id, ok)
	}
	if _, ok := s.Find("zzz"); ok {
		t.Error("Find(zzz) found a node")
	}
}

func TestTransformOverride(t *testing.T) {
	m := math3d.Translate(math3d.V3(5, 5, 5))
	tr := IdentityTransform()
	tr.Translation = math3d.V3(1, 1, 1)
	tr.Override = &m
	if !tr.Matrix().ApproxEqual(m, 0) {
		t.Error("Override was not used")
	}
}

func TestFirstLight(t *testing.T) {
	s := New()
	if _, ok, err := s.FirstLight(); ok || err != nil {
		t.Fatalf("empty scene: found=%v err=%v", ok, err)
	}

	pivot := NewNode("pivot", GroupPayload())
	pivot.Transform.Rotation = math3d.V3(0, math.Pi/2, 0)
	p, _ := s.AddChild(Root, pivot)
	_, _ = s.AddChild(p, NewNode("sun", LightPayload(math3d.V3(0, 0, -2))))
	_, _ = s.AddChild(Root, NewNode("moon", LightPayload(math3d.V3(0, 1, 0))))

	dir, ok, err := s.FirstLight()
	if err != nil || !ok {
		t.Fatalf("FirstLight: found=%v err=%v", ok, err)
	}
	// (0,0,-1) rotated +90° about Y points along -X.
	if dir.Sub(math3d.V3(-1, 0, 0)).Len() > 1e-9 {
		t.Errorf("dir = %v, want (-1,0,0)", dir)
	}
}

func TestFirstLightTraverseError(t *testing.T) {
	// A zero Scene has no root node to walk from.
	var s Scene
	_, ok, err := s.FirstLight()
	if ok || !errors.Is(err, ErrUnknownNode) {
		t.Errorf("FirstLight on zero scene: found=%v err=%v, want ErrUnknownNode", ok, err)
	}
}

func TestKindString(t *testing.T) {
	if KindMesh.String() != "mesh" || Kind(99).String() != "unknown" {
		t.Error("unexpected Kind strings")
	}
}

func TestUpdateCustomHandler(t *testing.T) {
	s := New()
	n := NewNode("spinner", GroupPayload())
	n.Behavior = Behavior{Kind: BehaviorCustom, Handler: 7}
	id, _ := s.AddChild(Root, n)

	s.RegisterHandler(7, func(n *Node, in Input, dt float64, _ *camera.Store) error {
		n.Transform.Rotation.Y += in.Yaw * dt
		return nil
	})

	if err := s.Update(0.5, Input{Yaw: 2}, camera.NewStore()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Node(id)
	if got.Transform.Rotation.Y != 1 {
		t.Errorf("rotation = %v, want 1", got.Transform.Rotation.Y)
	}
}

func TestUpdateErrors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want error
	}{
		{
			"missing handler",
			Node{Name: "x", Transform: IdentityTransform(), Behavior: Behavior{Kind: BehaviorCustom, Handler: 3}},
			ErrUnknownHandler,
		},
		{
			"camera control on group",
			Node{Name: "y", Transform: IdentityTransform(), Behavior: Behavior{Kind: BehaviorStandardCameraControl}},
			ErrNotCamera,
		},
		{
			"camera control unknown camera",
			Node{Name: "z", Transform: IdentityTransform(), Payload: CameraPayload(4),
				Behavior: Behavior{Kind: BehaviorStandardCameraControl}},
			camera.ErrUnknownCamera,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			_, _ = s.AddChild(Root, tc.node)
			if err := s.Update(1.0/60, Input{}, camera.NewStore()); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStandardCameraControl(t *testing.T) {
	cams := camera.NewStore()
	cam := camera.New(math3d.V3(0, 0, 5), math3d.Zero3())
	cid := cams.Add(cam)

	s := New()
	n := NewNode("cam", CameraPayload(cid))
	n.Behavior = Behavior{Kind: BehaviorStandardCameraControl}
	_, _ = s.AddChild(Root, n)

	// No input keeps the camera where it is.
	if err := s.Update(1.0/60, Input{}, cams); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cam.Position.Sub(math3d.V3(0, 0, 5)).Len() > 1e-9 {
		t.Errorf("idle update moved camera to %v", cam.Position)
	}

	// A yaw impulse swings the camera around the target at constant distance.
	for range 30 {
		if err := s.Update(1.0/60, Input{Yaw: 3}, cams); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if cam.Position.X <= 0 {
		t.Errorf("camera did not orbit toward +X: %v", cam.Position)
	}
	if d := cam.Position.Sub(cam.Target).Len(); math.Abs(d-5) > 1e-6 {
		t.Errorf("orbit distance = %v, want 5", d)
	}
}

func TestAxisDecay(t *testing.T) {
	a := NewAxis(DefaultFPS, 0)
	a.Velocity = 1
	for range 300 {
		a.Update()
	}
	if math.Abs(a.Velocity) > 1e-3 {
		t.Errorf("velocity = %v, want decayed to ~0", a.Velocity)
	}
	if a.Position <= 0 {
		t.Errorf("position = %v, want > 0", a.Position)
	}
}
