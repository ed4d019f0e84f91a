package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/axellelanca/linkshelf/internal/errors"
)

const keyPrefix = "session:"

// Store maps opaque session tokens to user ids.
type Store interface {
	// Get returns the user bound to token. ok is false when the token is
	// unknown or has expired.
	Get(ctx context.Context, token string) (userID uint, ok bool, err error)
	Set(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// RedisStore keeps sessions in Redis with a per-key TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore on top of an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, token string) (uint, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	raw, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperrors.Unavailable("session lookup", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session %q: %w", token, err)
	}
	return uint(id), true, nil
}

func (s *RedisStore) Set(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		return apperrors.Unavailable("session write", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, keyPrefix+token).Err(); err != nil {
		return apperrors.Unavailable("session delete", err)
	}
	return nil
}
