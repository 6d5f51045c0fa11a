// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danielhkuo/ai-ceo/auth"
	"github.com/danielhkuo/ai-ceo/logger"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
// Client IPs are stored hashed. Forwarding headers are only honoured
// when trustProxy is set, otherwise the connection peer is the key.
type RateLimiter struct {
	rps        rate.Limit
	burst      int
	salt       string
	trustProxy bool
	now        func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter(rps float64, burst int, salt string, trustProxy bool) *RateLimiter {
	return &RateLimiter{
		rps:        rate.Limit(rps),
		burst:      burst,
		salt:       salt,
		trustProxy: trustProxy,
		now:        time.Now,
		visitors:   make(map[string]*visitor),
	}
}

func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		return GetClientIP(r)
	}
	return RemoteIP(r)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	key := auth.HashIP(ip, rl.salt)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Allow reports whether a request from ip may proceed now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.limiterFor(ip).Allow()
}

// Limit rejects requests over the per-client rate with 429.
func (rl *RateLimiter) Limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := rl.clientIP(r)
		if !rl.Allow(ip) {
			logger.Debug("rate limited", zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(rl.rps)))
			ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, slow down")
			return
		}
		next(w, r)
	}
}

func retryAfter(rps rate.Limit) int {
	if rps <= 0 || rps == rate.Inf {
		return 1
	}
	secs := int(1/float64(rps) + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Cleanup drops visitors idle for longer than the TTL and returns how many were removed.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Run cleans up stale visitors every minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
