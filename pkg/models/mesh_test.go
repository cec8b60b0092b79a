package models

import (
	"errors"
	"testing"

	"github.com/taigrr/sloth/pkg/math3d"
)

func triangleMesh() *Mesh {
	m := NewMesh("tri")
	m.Positions = []math3d.Vec3{math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(0, 2, 3)}
	m.UVs = []math3d.Vec2{math3d.V2(0, 0)}
	m.Normals = []math3d.Vec3{math3d.V3(0, 0, 1)}
	m.Faces = []Face{{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}}
	m.CalculateBounds()
	return m
}

func TestMeshBounds(t *testing.T) {
	m := triangleMesh()
	if m.BoundsMin != math3d.V3(-1, -1, 0) || m.BoundsMax != math3d.V3(1, 2, 3) {
		t.Errorf("bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
	if got := m.Center(); got != math3d.V3(0, 0.5, 1.5) {
		t.Errorf("Center = %v", got)
	}
	if got := m.Size(); got != math3d.V3(2, 3, 3) {
		t.Errorf("Size = %v", got)
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Mesh)
		want error
	}{
		{"valid", func(*Mesh) {}, nil},
		{"position", func(m *Mesh) { m.Faces[0][1].Position = 3 }, ErrIndexOutOfRange},
		{"uv", func(m *Mesh) { m.Faces[0][2].UV = 1 }, ErrIndexOutOfRange},
		{"normal", func(m *Mesh) { m.Faces[0][0].Normal = -1 }, ErrIndexOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := triangleMesh()
			tc.edit(m)
			if err := m.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	s := NewStore()
	id, err := s.Add(triangleMesh())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m, err := s.Get(id); err != nil || m.Name != "tri" {
		t.Errorf("Get(%d) = %v, %v", id, m, err)
	}
	if _, err := s.Get(id + 1); !errors.Is(err, ErrUnknownMesh) {
		t.Errorf("Get(unknown) err = %v", err)
	}

	bad := triangleMesh()
	bad.Faces[0][0].Position = 9
	if _, err := s.Add(bad); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Add(invalid) err = %v", err)
	}
	if _, err := s.Add(nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("Add(nil) err = %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}
