package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSet is a seen-id set backed by a Redis set, letting separate runs
// share one identifier space so duplicates are caught across runs. SADD is
// atomic, so RedisSet is also safe if runs ever overlap. Errors from Redis
// surface to the caller: a dedup store outage must abort the run instead of
// silently disabling duplicate suppression.
type RedisSet struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSet wraps an existing Redis client. A ttl of zero keeps the set
// forever; otherwise the expiry is refreshed whenever the set grows.
func NewRedisSet(client *redis.Client, key string, ttl time.Duration) *RedisSet {
	return &RedisSet{client: client, key: key, ttl: ttl}
}

// RedisConfig holds connection settings for the shared seen-id set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Admit implements Set. The id is admitted iff SADD inserted it.
func (s *RedisSet) Admit(ctx context.Context, recordID string) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key, recordID).Result()
	if err != nil {
		return false, fmt.Errorf("sadd %s: %w", s.key, err)
	}

	if added == 1 && s.ttl > 0 {
		// Refresh expiry on growth so an abandoned set eventually clears.
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", s.key, err)
		}
	}

	return added == 1, nil
}
