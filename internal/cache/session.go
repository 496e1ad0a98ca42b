package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix is the Redis key prefix for session entries.
const sessionKeyPrefix = "session:"

// ErrSessionNotFound indicates the token has no session entry or the
// stored value is not a valid user identifier.
var ErrSessionNotFound = errors.New("session not found")

// GetSessionUserID resolves a session token to the authenticated user ID.
// Returns ErrSessionNotFound for absent tokens and for corrupted values.
func (c *Cache) GetSessionUserID(ctx context.Context, token string) (int, error) {
	key := sessionKeyPrefix + token

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("session lookup failed: %w", err)
	}

	userID, err := strconv.Atoi(value)
	if err != nil {
		// Corrupted entry - treat as missing
		return 0, ErrSessionNotFound
	}

	return userID, nil
}

// SetSessionUserID stores the authenticated user ID under the token.
func (c *Cache) SetSessionUserID(ctx context.Context, token string, userID int, ttl time.Duration) error {
	key := sessionKeyPrefix + token

	if err := c.client.Set(ctx, key, strconv.Itoa(userID), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// DeleteSession removes the whole session entry for the token.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	key := sessionKeyPrefix + token

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
