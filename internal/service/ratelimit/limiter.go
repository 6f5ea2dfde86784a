package ratelimit

import (
	"sync"
	"time"
)

// Voice endpoints are driven by push-to-talk, so a small burst with a
// slow refill is enough for any honest client.
const (
	DefaultBurst  = 5.0
	DefaultRefill = 1.0 // tokens per second
	idleEviction  = 10 * time.Minute
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64
	last       time.Time
}

// Limiter is a per-user token bucket for the spoken-command
// endpoints.
type Limiter struct {
	mu sync.Mutex
	m  map[string]*bucket
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket)} }

// AllowUser consumes one token for user with the voice defaults.
func (l *Limiter) AllowUser(user string) bool {
	return l.Allow(user, DefaultBurst, DefaultRefill)
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		l.evictIdle(now)
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// evictIdle drops buckets nobody has touched in a while. Called with
// the lock held, only when a new key is added.
func (l *Limiter) evictIdle(now time.Time) {
	for key, b := range l.m {
		if now.Sub(b.last) > idleEviction {
			delete(l.m, key)
		}
	}
}
