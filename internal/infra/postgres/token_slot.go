package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// TokenSlot keeps the session token in the session_tokens table, one row per name.
type TokenSlot struct {
	pool *pgxpool.Pool
	name string
}

func NewTokenSlot(pool *pgxpool.Pool, name string) *TokenSlot {
	return &TokenSlot{pool: pool, name: name}
}

func (s *TokenSlot) Load(ctx context.Context) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx, `SELECT token FROM session_tokens WHERE name=$1`, s.name).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *TokenSlot) Save(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_tokens (name, token, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET token=EXCLUDED.token, updated_at=EXCLUDED.updated_at`,
		s.name, token)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *TokenSlot) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM session_tokens WHERE name=$1`, s.name); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
