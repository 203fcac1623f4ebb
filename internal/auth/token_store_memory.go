package auth

import (
	"context"
	"sync"
	"time"

	"github.com/reelvault/backend/internal/models"
)

// NewInMemoryTokenStore returns a TokenStore backed by an in-memory map.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]models.RefreshToken)}
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshToken
}

// Save persists the provided refresh token record.
func (s *InMemoryTokenStore) Save(_ context.Context, token models.RefreshToken) error {
	s.mu.Lock()
	s.tokens[token.Token] = token
	s.mu.Unlock()
	return nil
}

// Find retrieves a refresh token record.
func (s *InMemoryTokenStore) Find(_ context.Context, token string) (models.RefreshToken, error) {
	s.mu.RLock()
	stored, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return models.RefreshToken{}, ErrTokenNotFound
	}
	return stored, nil
}

// Revoke stamps the refresh token record with a revocation time.
func (s *InMemoryTokenStore) Revoke(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tokens[token]
	if !ok {
		return ErrTokenNotFound
	}
	if stored.RevokedAt == nil {
		stored.RevokedAt = &at
	}
	stored.UpdatedAt = at
	s.tokens[token] = stored
	return nil
}

// Has reports whether a refresh token exists. Useful for tests.
func (s *InMemoryTokenStore) Has(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}
