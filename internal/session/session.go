package session

import (
	"context"
	"time"
)

// Store holds refresh tokens and presence keys. The Redis implementation
// is the production one; tests substitute an in-memory fake.
type Store interface {
	SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, userID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userID string) error

	SetPresence(ctx context.Context, userID, status string, ttl time.Duration) error
	GetPresence(ctx context.Context, userID string) (string, error)
	ClearPresence(ctx context.Context, userID string) error
}
