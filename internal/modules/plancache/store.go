// README: Plan cache backed by Redis string keys with TTL.
package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a cached plan is served.
const DefaultTTL = 24 * time.Hour

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redis, ttl: ttl}
}

// scopedKey keeps plans generated by different models apart.
func scopedKey(key, modelID string) string {
	return fmt.Sprintf("%s:%s", key, modelID)
}

func (s *Store) Get(ctx context.Context, key, modelID string) (CachedPlan, error) {
	val, err := s.redis.Get(ctx, scopedKey(key, modelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedPlan{}, ErrCacheMiss
	}
	if err != nil {
		return CachedPlan{}, err
	}

	var p CachedPlan
	if err := json.Unmarshal(val, &p); err != nil {
		return CachedPlan{}, fmt.Errorf("plancache: decode %s: %w", key, err)
	}
	return p, nil
}

func (s *Store) Set(ctx context.Context, key string, p CachedPlan) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	val, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, scopedKey(key, p.ModelID), val, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key, modelID string) error {
	return s.redis.Del(ctx, scopedKey(key, modelID)).Err()
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
