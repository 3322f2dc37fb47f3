package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lcastillo/botilleria/internal/domain"
)

// DefaultCartTTL is how long an untouched cart survives in Redis.
const DefaultCartTTL = 30 * 24 * time.Hour

// RedisStore persists carts in Redis, one JSON value per cart key.
// Suited for running several storefront instances against one cart state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed cart store. A non-positive TTL falls
// back to DefaultCartTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Load implements Store. A missing key or undecodable value hydrates an
// empty cart.
func (s *RedisStore) Load(ctx context.Context, key string) ([]domain.CartLine, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.CartLine{}, nil
		}
		return nil, fmt.Errorf("failed to load cart from redis: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return []domain.CartLine{}, nil
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Save implements Store. Each save refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, key string, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}

	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return "cart:" + key
}
