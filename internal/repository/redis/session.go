package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/shelfable/bookstore/pkg/errors"
)

const keyPrefix = "refresh:"

// SessionRepository implements repository.SessionRepository using Redis.
// Each entry maps a refresh token's jti to the user it was issued for. The
// TTL tracks the token's own lifetime, so expired sessions disappear without
// any sweeper.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed session repository.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Save registers a refresh token's jti for the given user.
func (r *SessionRepository) Save(ctx context.Context, jti, userID string, ttl time.Duration) error {
	key := keyPrefix + jti

	if err := r.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Get returns the user ID registered for the jti.
func (r *SessionRepository) Get(ctx context.Context, jti string) (string, error) {
	key := keyPrefix + jti

	userID, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}

	return userID, nil
}

// Delete removes the registry entry for the jti. Missing entries are a no-op.
func (r *SessionRepository) Delete(ctx context.Context, jti string) error {
	key := keyPrefix + jti

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}

	return nil
}
