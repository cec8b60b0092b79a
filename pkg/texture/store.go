package texture

import (
	"errors"
	"fmt"
)

// ErrUnknownTexture is returned when an ID was never registered.
var ErrUnknownTexture = errors.New("unknown texture")

// ID identifies a texture in a Store.
type ID uint32

// Store owns loaded textures for the lifetime of the program.
type Store struct {
	textures []*Texture
}

// NewStore creates an empty texture store.
func NewStore() *Store {
	return &Store{}
}

// Add registers a texture and returns its id.
func (s *Store) Add(t *Texture) (ID, error) {
	if t == nil || len(t.Pix) != t.Width*t.Height*4 || t.Width <= 0 || t.Height <= 0 {
		return 0, fmt.Errorf("add texture: %w", ErrSizeMismatch)
	}
	s.textures = append(s.textures, t)
	return ID(len(s.textures) - 1), nil
}

// Get returns the texture registered under id.
func (s *Store) Get(id ID) (*Texture, error) {
	if int(id) >= len(s.textures) {
		return nil, fmt.Errorf("texture %d: %w", id, ErrUnknownTexture)
	}
	return s.textures[id], nil
}

// Len returns the number of registered textures.
func (s *Store) Len() int {
	return len(s.textures)
}
