// Package credential persists the bearer token proving an authenticated
// session. It is a pure storage primitive: no network calls, no validation.
// The session manager writes it; the gateway reads it per request and may
// clear it when the server rejects the credential.
package credential

import "sync"

// Store holds at most one credential.
type Store interface {
	// Set stores the token, replacing any previous one.
	Set(token string) error
	// Clear removes the token. Clearing an empty store is a no-op.
	Clear() error
	// Current returns the token and whether one is present.
	Current() (string, bool)
}

// MemoryStore keeps the credential in process memory only. Used in tests and
// for flows that must not outlive the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) Current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}
