package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type attemptBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// attemptLimiter throttles sign-in attempts per key with a token bucket.
// Buckets left alone long enough to refill are dropped, so the map only
// holds keys tried recently.
type attemptLimiter struct {
	mu        sync.Mutex
	every     time.Duration
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	buckets   map[string]*attemptBucket
}

func newAttemptLimiter(every time.Duration, burst int) *attemptLimiter {
	return &attemptLimiter{
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst),
		now:     time.Now,
		buckets: make(map[string]*attemptBucket),
	}
}

func (l *attemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &attemptBucket{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Reset forgets key's failed attempts.
func (l *attemptLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep runs at most once per idle period. A bucket idle that long is full
// again, so dropping it does not change any answer.
func (l *attemptLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
}
