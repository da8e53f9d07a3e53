// Package ratelimit throttles HTTP clients with one token bucket per client
// and endpoint tier.
package ratelimit

import (
	"sync"
	"time"
)

// tokenBucket holds up to capacity tokens and refills at refillRate tokens
// per second. Every request spends one token.
type tokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64
	tokens     float64
	updated    time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *tokenBucket {
	return &tokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		updated:    now,
		lastUsed:   now,
	}
}

// take spends a token if one is available and reports the state afterwards.
func (b *tokenBucket) take(now time.Time) (ok bool, remaining int, full time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	b.lastUsed = now
	if b.tokens >= 1 {
		b.tokens--
		ok = true
	}
	return ok, int(b.tokens), b.fullAt(now)
}

// idleSince reports when the bucket was last used.
func (b *tokenBucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed
}

func (b *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.updated).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	}
	b.updated = now
}

// fullAt is when the bucket will be back at capacity.
func (b *tokenBucket) fullAt(now time.Time) time.Time {
	missing := b.capacity - b.tokens
	if missing <= 0 || b.refillRate <= 0 {
		return now
	}
	return now.Add(time.Duration(missing / b.refillRate * float64(time.Second)))
}

// nextTokenAt is when at least one token will be available.
func (b *tokenBucket) nextTokenAt(now time.Time) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens >= 1 || b.refillRate <= 0 {
		return now
	}
	return now.Add(time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second)))
}
