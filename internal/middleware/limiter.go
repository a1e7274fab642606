// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterCache is a concurrency-safe cache of per-key rate limiters.
type limiterCache[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// newLimiterCache creates a limiter cache with the given per-key rate and burst.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the limiter for key, creating one if needed.
func (c *limiterCache[K]) get(key K) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(c.rps, c.burst)
		c.limiters[key] = limiter
	}
	return limiter
}

// clearIfExceeds drops all cached limiters when the cache grows beyond max.
// Crude, but bounds memory without tracking per-entry last access.
func (c *limiterCache[K]) clearIfExceeds(max int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.limiters) <= max {
		return false
	}
	c.limiters = make(map[K]*rate.Limiter)
	return true
}
