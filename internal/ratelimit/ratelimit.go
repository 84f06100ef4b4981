// Package ratelimit implements the continuous token-bucket gate on call
// frequency. The bucket holds maxCallsPerDay tokens and refills at
// maxCallsPerDay/86400 tokens per second, so a day's allowance is spread
// evenly across 24 hours.
package ratelimit

import (
	"sync"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Limiter is a token-bucket rate limiter. It is safe for concurrent use;
// the refill-then-consume sequence is atomic with respect to other calls.
type Limiter struct {
	mu         sync.Mutex
	maxTokens  float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// New creates a limiter sized for maxCallsPerDay.
func New(maxCallsPerDay int) *Limiter {
	return newWithClock(maxCallsPerDay, time.Now)
}

func newWithClock(maxCallsPerDay int, now func() time.Time) *Limiter {
	l := &Limiter{
		maxTokens:  float64(maxCallsPerDay),
		tokens:     float64(maxCallsPerDay),
		refillRate: float64(maxCallsPerDay) / secondsPerDay,
		now:        now,
	}
	l.lastRefill = now()
	return l
}

// TryConsume takes one token if available. A denied attempt does not
// mutate the bucket beyond the lazy refill.
func (l *Limiter) TryConsume() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Remaining returns the number of whole calls currently available.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return int(l.tokens)
}

// Reset restores the bucket to full. Used for testing and reinitialization.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens = l.maxTokens
	l.lastRefill = l.now()
}

// refill credits tokens for elapsed time, capped at the bucket size.
// Caller must hold mu.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.tokens = min(l.maxTokens, l.tokens+elapsed*l.refillRate)
	l.lastRefill = now
}
