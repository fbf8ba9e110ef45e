// Package authcode stores the one-time Google authorization codes minted by
// the dev OAuth loop.
package authcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"educonnect/internal/devbackend"
	"educonnect/pkg/platform/sentinel"
)

// Error Contract:
// - Consume returns sentinel.ErrNotFound for unknown codes,
//   sentinel.ErrExpired past the deadline, and sentinel.ErrAlreadyUsed on
//   replay. A consumed code never succeeds twice.

// MemoryStore holds codes in memory. Codes are short-lived so no external
// store variant exists.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]*devbackend.AuthCode
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]*devbackend.AuthCode)}
}

func (s *MemoryStore) Create(_ context.Context, code *devbackend.AuthCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = code
	return nil
}

// Consume validates and marks the code used in one step.
func (s *MemoryStore) Consume(_ context.Context, code string, now time.Time) (*devbackend.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if record.Used {
		return nil, fmt.Errorf("authorization code already used: %w", sentinel.ErrAlreadyUsed)
	}
	if now.After(record.ExpiresAt) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	record.Used = true
	copied := *record
	return &copied, nil
}

// DeleteExpired removes codes that expired before now.
func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for code, record := range s.codes {
		if record.ExpiresAt.Before(now) {
			delete(s.codes, code)
			deleted++
		}
	}
	return deleted
}
