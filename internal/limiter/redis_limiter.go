package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "iptracker:ratelimit:"

// fixedWindowScript increments the window counter and starts its TTL on
// the first hit, atomically on the Redis server.
// KEYS[1] = counter key, ARGV[1] = window in milliseconds
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter shares the upstream quota between several tracker processes
// using one fixed-window counter per key
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter connects to Redis and returns a limiter allowing limit calls per window
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number
func NewRedisLimiter(addr, password string, db int, limit int, window time.Duration) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	if limit < 1 {
		limit = 1
	}
	if window < time.Millisecond {
		window = time.Second
	}

	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

// Allow counts the call against key's current window.
// On Redis errors it fails open so a cache outage never blocks lookups.
func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKeyPrefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true
	}
	return count <= l.limit
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
