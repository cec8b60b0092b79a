// Package models provides mesh representation, loading, and storage for sloth.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/sloth/pkg/math3d"
)

// Load-time errors. The rasterizer never sees a mesh that failed validation.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrMalformed         = errors.New("malformed mesh record")
	ErrIndexOutOfRange   = errors.New("face index out of range")
)

// Mesh holds parsed geometry. Faces reference the attribute arrays by index.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Index is one face corner: 0-based indices into Positions, UVs and Normals.
type Index struct {
	Position int
	UV       int
	Normal   int
}

// Face is a triangle. Loaders triangulate larger polygons.
type Face [3]Index

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]math3d.Vec3, 0),
		UVs:       make([]math3d.Vec2, 0),
		Normals:   make([]math3d.Vec3, 0),
		Faces:     make([]Face, 0),
	}
}

// Validate checks that every face index is in bounds for its array.
func (m *Mesh) Validate() error {
	for fi, f := range m.Faces {
		for ci, idx := range f {
			if idx.Position < 0 || idx.Position >= len(m.Positions) {
				return fmt.Errorf("face %d corner %d: position %d of %d: %w",
					fi, ci, idx.Position, len(m.Positions), ErrIndexOutOfRange)
			}
			if idx.UV < 0 || idx.UV >= len(m.UVs) {
				return fmt.Errorf("face %d corner %d: uv %d of %d: %w",
					fi, ci, idx.UV, len(m.UVs), ErrIndexOutOfRange)
			}
			if idx.Normal < 0 || idx.Normal >= len(m.Normals) {
				return fmt.Errorf("face %d corner %d: normal %d of %d: %w",
					fi, ci, idx.Normal, len(m.Normals), ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Corner returns the attributes referenced by corner c of face f.
func (m *Mesh) Corner(f Face, c int) (pos math3d.Vec3, uv math3d.Vec2, normal math3d.Vec3) {
	idx := f[c]
	return m.Positions[idx.Position], m.UVs[idx.UV], m.Normals[idx.Normal]
}
