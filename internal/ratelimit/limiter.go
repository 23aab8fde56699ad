// Package ratelimit implements the per-key token bucket shared by the web
// and SSH surfaces.
package ratelimit

import (
	"sync"
	"time"
)

const (
	defaultLimitPerMinute = 30
	defaultBurst          = 10
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter refills each key at limitPerMinute/60 tokens per second up to burst.
type Limiter struct {
	ratePerSecond float64
	burst         float64
	now           func() time.Time

	mu      sync.Mutex
	buckets map[string]bucket
}

// New builds a Limiter. Non-positive arguments take the defaults.
func New(limitPerMinute, burst int) *Limiter {
	if limitPerMinute <= 0 {
		limitPerMinute = defaultLimitPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}

	return &Limiter{
		ratePerSecond: float64(limitPerMinute) / 60.0,
		burst:         float64(burst),
		now:           func() time.Time { return time.Now().UTC() },
		buckets:       make(map[string]bucket),
	}
}

// Allow spends one token for key if available.
func (l *Limiter) Allow(key string) bool {
	return l.AllowAt(key, l.now())
}

// AllowAt is Allow with an explicit clock reading.
func (l *Limiter) AllowAt(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b.last.IsZero() {
		b = bucket{tokens: l.burst, last: now}
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.ratePerSecond
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.last = now
	}

	if b.tokens < 1 {
		l.buckets[key] = b
		return false
	}

	b.tokens--
	l.buckets[key] = b
	return true
}

// Prune drops buckets that have been idle long enough to be full again.
func (l *Limiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	refill := time.Duration(l.burst / l.ratePerSecond * float64(time.Second))
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.last) >= refill {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}
