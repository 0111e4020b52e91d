// Package ratelimit provides per-client token-bucket rate limiting for
// the ingest endpoint.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter tracks one token bucket per client key.
type Limiter struct {
	rate  rate.Limit
	burst int

	mu         sync.Mutex
	buckets    map[string]*bucket
	maxAge     time.Duration
	lastSweep  time.Time
	sweepEvery time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing rps requests per second with the given
// burst per key.
func New(rps float64, burst int) *Limiter {
	return &Limiter{
		rate:       rate.Limit(rps),
		burst:      burst,
		buckets:    make(map[string]*bucket),
		maxAge:     10 * time.Minute,
		sweepEvery: 5 * time.Minute,
		lastSweep:  time.Now(),
	}
}

// Allow reports whether a request from key may proceed now.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	if now.Sub(l.lastSweep) > l.sweepEvery {
		l.sweep(now)
	}
	l.mu.Unlock()

	return b.limiter.Allow()
}

// sweep drops buckets idle past maxAge. Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.maxAge)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
