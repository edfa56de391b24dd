package limiter

import (
	"sync"
	"time"
)

// idleBucketTTL is how long an untouched bucket is kept around
const idleBucketTTL = 10 * time.Minute

// bucket is a token bucket for one key
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket limiter held in process memory.
// Each key may spend `limit` calls at once and earns them back evenly
// over `window`.
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	capacity    float64
	refillRate  float64 // tokens per second
	now         func() time.Time
	lastCleanup time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing limit calls per window
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return newMemoryLimiterWithClock(limit, window, time.Now)
}

func newMemoryLimiterWithClock(limit int, window time.Duration, now func() time.Time) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}

	return &MemoryLimiter{
		buckets:     make(map[string]*bucket),
		capacity:    float64(limit),
		refillRate:  float64(limit) / window.Seconds(),
		now:         now,
		lastCleanup: now(),
	}
}

// Allow spends one token from key's bucket if there is one
func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	if elapsed > 0 {
		b.tokens = min(l.capacity, b.tokens+elapsed*l.refillRate)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictIdle drops buckets nobody has used for a while. Must hold l.mu.
func (l *MemoryLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastCleanup) < idleBucketTTL {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleBucketTTL {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}

// Close implements Limiter; there is nothing to release
func (l *MemoryLimiter) Close() error {
	return nil
}
