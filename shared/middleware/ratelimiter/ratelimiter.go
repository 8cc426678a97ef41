// Package ratelimiter keeps one token bucket per identity and forgets
// identities that stay idle longer than the expiration time.
package ratelimiter

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type UserRateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*entry
	rate           rate.Limit
	burst          int
	expirationTime time.Duration
	lastSweep      time.Time
	now            func() time.Time
}

// New creates a limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters:       make(map[string]*entry),
		rate:           rate.Limit(rps),
		burst:          burst,
		expirationTime: expirationTime,
		now:            time.Now,
	}
}

// sweep drops idle entries at most once per expiration period. Caller holds mu.
func (url *UserRateLimiter) sweep(now time.Time) {
	if url.expirationTime <= 0 || now.Sub(url.lastSweep) < url.expirationTime {
		return
	}
	for id, e := range url.limiters {
		if now.Sub(e.lastSeen) >= url.expirationTime {
			delete(url.limiters, id)
		}
	}
	url.lastSweep = now
}

// Allow reports whether identity may make a request now and consumes a token
// if so.
func (url *UserRateLimiter) Allow(identity string) bool {
	url.mu.Lock()
	now := url.now()
	url.sweep(now)
	e, ok := url.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(url.rate, url.burst)}
		url.limiters[identity] = e
	}
	e.lastSeen = now
	url.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Len is the number of identities currently tracked.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

// RetryAfterSeconds is how long an emptied bucket takes to regain one token,
// rounded up to a whole second.
func (url *UserRateLimiter) RetryAfterSeconds() int {
	if url.rate <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(url.rate))))
}
