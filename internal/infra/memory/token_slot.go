package memory

import (
	"context"
	"sync"
)

// TokenSlot is an in-memory credential slot (useful for tests/demos).
type TokenSlot struct {
	mu    sync.RWMutex
	token string
	saves int
}

func NewTokenSlot(initial string) *TokenSlot {
	return &TokenSlot{token: initial}
}

func (s *TokenSlot) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenSlot) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.saves++
	return nil
}

func (s *TokenSlot) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// Saves reports how many times a token was persisted.
func (s *TokenSlot) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
