package store

import (
	"context"
	"sync"
	"time"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

// MemoryStore keeps sessions in a map. Values are cloned on the way in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
}

// NewMemoryStore returns an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*interview.Session)}
}

// Create implements Repository.
func (s *MemoryStore) Create(_ context.Context, session *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return ErrAlreadyExists
	}

	stampCreated(session)
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Get implements Repository.
func (s *MemoryStore) Get(_ context.Context, id string) (*interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

// Update implements Repository.
func (s *MemoryStore) Update(_ context.Context, session *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != session.Version {
		return ErrVersionConflict
	}

	session.Version++
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Delete implements Repository.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Close implements Repository.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*interview.Session)
	return nil
}
