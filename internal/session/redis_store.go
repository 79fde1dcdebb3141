package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix = "refresh_token:"
	presencePrefix     = "presence:"
)

var ErrNoSession = errors.New("no session")

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) SaveRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshTokenPrefix+userID, token, ttl).Err()
}

func (s *redisStore) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	v, err := s.client.Get(ctx, refreshTokenPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	return v, err
}

func (s *redisStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	return s.client.Del(ctx, refreshTokenPrefix+userID).Err()
}

func (s *redisStore) SetPresence(ctx context.Context, userID, status string, ttl time.Duration) error {
	return s.client.Set(ctx, presencePrefix+userID, status, ttl).Err()
}

func (s *redisStore) GetPresence(ctx context.Context, userID string) (string, error) {
	v, err := s.client.Get(ctx, presencePrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	return v, err
}

func (s *redisStore) ClearPresence(ctx context.Context, userID string) error {
	return s.client.Del(ctx, presencePrefix+userID).Err()
}
