package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"educonnect/internal/devbackend"
	"educonnect/pkg/platform/sentinel"
)

// MemoryStore keeps users in memory for tests and the default dev server.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]devbackend.User
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]devbackend.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, u *devbackend.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return fmt.Errorf("email %s already registered: %w", u.Email, sentinel.ErrConflict)
	}
	s.byID[u.ID] = *u
	s.byEmail[key] = u.ID
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*devbackend.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*devbackend.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
