package camera

import (
	"errors"
	"fmt"
)

// ErrUnknownCamera is returned when an ID was never registered.
var ErrUnknownCamera = errors.New("unknown camera")

// ID identifies a camera in a Store.
type ID uint32

// Store owns cameras and tracks at most one active camera.
type Store struct {
	cameras   []*Camera
	active    ID
	hasActive bool
}

// NewStore creates an empty camera store with no active camera.
func NewStore() *Store {
	return &Store{}
}

// Add registers a camera and returns its id. It does not become active.
func (s *Store) Add(c *Camera) ID {
	s.cameras = append(s.cameras, c)
	return ID(len(s.cameras) - 1)
}

// Get returns the camera registered under id.
func (s *Store) Get(id ID) (*Camera, error) {
	if int(id) >= len(s.cameras) {
		return nil, fmt.Errorf("camera %d: %w", id, ErrUnknownCamera)
	}
	return s.cameras[id], nil
}

// SetActive makes id the active camera, replacing any previous one.
func (s *Store) SetActive(id ID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.active = id
	s.hasActive = true
	return nil
}

// ClearActive leaves the store with no active camera.
func (s *Store) ClearActive() {
	s.hasActive = false
}

// Active returns the active camera, if any.
func (s *Store) Active() (*Camera, bool) {
	if !s.hasActive {
		return nil, false
	}
	return s.cameras[s.active], true
}

// ActiveID returns the id of the active camera, if any.
func (s *Store) ActiveID() (ID, bool) {
	return s.active, s.hasActive
}

// Len returns the number of registered cameras.
func (s *Store) Len() int {
	return len(s.cameras)
}
