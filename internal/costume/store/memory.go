package store

import (
	"context"
	"fmt"
	"sync"

	"costumedesk/internal/costume/models"
	"costumedesk/pkg/platform/sentinel"
)

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = sentinel.ErrNotFound

// InMemory holds the costume snapshot for the lifetime of the process.
// Records go in and come out as copies so callers can never mutate the store.
type InMemory struct {
	mu       sync.RWMutex
	costumes map[string]*models.Record
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{costumes: make(map[string]*models.Record)}
}

// Save inserts a record. Ids are unique; a second Save for the same id fails.
func (s *InMemory) Save(_ context.Context, r *models.Record) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("costume record requires an id: %w", sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.costumes[r.ID]; exists {
		return fmt.Errorf("costume %s already stored: %w", r.ID, sentinel.ErrAlreadyUsed)
	}
	s.costumes[r.ID] = r.Clone()
	return nil
}

// FindByID returns a copy of the record stored under id.
func (s *InMemory) FindByID(_ context.Context, id string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.costumes[id]; ok {
		return r.Clone(), nil
	}
	return nil, ErrNotFound
}

// Delete removes the record stored under id.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.costumes[id]; !ok {
		return ErrNotFound
	}
	delete(s.costumes, id)
	return nil
}

// Count returns the number of stored records.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.costumes), nil
}
