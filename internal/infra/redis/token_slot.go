package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenSlot persists the session token in Redis under a single key.
// A non-zero ttl lets the slot expire on its own if the client is abandoned.
type TokenSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewTokenSlot(client *redis.Client, namespace string, ttl time.Duration) *TokenSlot {
	return &TokenSlot{
		client: client,
		key:    namespace + ":session:accessToken",
		ttl:    ttl,
	}
}

func (s *TokenSlot) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *TokenSlot) Save(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key, token, s.ttl).Err()
}

func (s *TokenSlot) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Key returns the Redis key the token lives under.
func (s *TokenSlot) Key() string {
	return s.key
}
