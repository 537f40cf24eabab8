// Package credential owns the single session token the client holds.
package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Key is the fixed name the token is stored under in every durable slot.
const Key = "accessToken"

// Slot is a durable key-value slot for one opaque token. Load returns "" when absent.
type Slot interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Store caches the token in memory and writes it through to its slot.
// Only the request pipeline and the session facade should hold a Store.
type Store struct {
	slot Slot

	mu      sync.RWMutex
	token   string
	version uint64
}

func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

// Init reads the persisted token; call once at startup.
func (s *Store) Init(ctx context.Context) error {
	token, err := s.slot.Load(ctx)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the current token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Current returns the token with a version that changes on every Set or Clear,
// letting callers detect that the session moved on since they read it.
func (s *Store) Current() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.version
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set replaces the token. The in-memory value is updated even if persisting fails.
func (s *Store) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.version++
	s.mu.Unlock()
	if err := s.slot.Save(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear drops the token from memory and from the slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.version++
	s.mu.Unlock()
	if err := s.slot.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// expiryLayouts covers ISO-8601 timestamps with and without a zone.
var expiryLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

// ExpiresAt decodes the token's expiry without verifying its signature.
// Both the registered "exp" claim and the backend's ISO-8601 "expiry" claim are understood.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case json.Number:
		if n, err := exp.Int64(); err == nil {
			return time.Unix(n, 0), true
		}
	}
	if raw, ok := claims["expiry"].(string); ok {
		for _, layout := range expiryLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
