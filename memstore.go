package authgate

import (
	"context"
	"sync"
)

// MemoryPrincipalStore is a map-backed [PrincipalStore] for tests, examples,
// and single-process deployments. Production integrations should implement
// [PrincipalStore] over their own user database instead.
type MemoryPrincipalStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
}

// NewMemoryPrincipalStore creates an empty in-memory store.
func NewMemoryPrincipalStore() *MemoryPrincipalStore {
	return &MemoryPrincipalStore{
		principals: make(map[string]Principal),
	}
}

// Put inserts or replaces a principal keyed by its username.
func (s *MemoryPrincipalStore) Put(principal Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[principal.Username] = principal
}

// Delete removes a principal. Deleting an absent username is a no-op.
func (s *MemoryPrincipalStore) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.principals, username)
}

// FindByUsername implements [PrincipalStore].
func (s *MemoryPrincipalStore) FindByUsername(_ context.Context, username string) (*Principal, error) {
	s.mu.RLock()
	principal, ok := s.principals[username]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrPrincipalNotFound
	}

	out := principal
	out.Authorities = append([]string(nil), principal.Authorities...)
	return &out, nil
}
