package credentials

import "sync"

// MemoryStore is an in-memory implementation of the Store interface. It
// provides the same contract as the keyring store but without persistence,
// which makes it suitable for tests and environments without a platform
// secret store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// HasToken reports whether an access token is stored.
func (s *MemoryStore) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// RetrieveToken returns the stored access token, if any.
func (s *MemoryStore) RetrieveToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// StoreToken stores the access token, replacing any previous value.
func (s *MemoryStore) StoreToken(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return true
}

// DeleteToken removes the stored access token.
func (s *MemoryStore) DeleteToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return true
}
