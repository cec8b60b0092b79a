package models

import (
	"errors"
	"fmt"
)

// ErrUnknownMesh is returned when a MeshID was never registered.
var ErrUnknownMesh = errors.New("unknown mesh")

// MeshID identifies a mesh in a Store. Scene nodes hold ids, not meshes.
type MeshID uint32

// Store owns loaded meshes for the lifetime of the program.
type Store struct {
	meshes []*Mesh
}

// NewStore creates an empty mesh store.
func NewStore() *Store {
	return &Store{}
}

// Add validates and registers a mesh, returning its id.
func (s *Store) Add(m *Mesh) (MeshID, error) {
	if m == nil {
		return 0, fmt.Errorf("add nil mesh: %w", ErrMalformed)
	}
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	s.meshes = append(s.meshes, m)
	return MeshID(len(s.meshes) - 1), nil
}

// Get returns the mesh registered under id.
func (s *Store) Get(id MeshID) (*Mesh, error) {
	if int(id) >= len(s.meshes) {
		return nil, fmt.Errorf("mesh %d: %w", id, ErrUnknownMesh)
	}
	return s.meshes[id], nil
}

// Len returns the number of registered meshes.
func (s *Store) Len() int {
	return len(s.meshes)
}
