// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit throttles credential endpoints per client IP with a
// fixed-window counter.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows. Safe for concurrent
// use.
type Limiter struct {
	mu       sync.Mutex
	counts   map[string]*entry
	limit    int
	interval time.Duration
	lastGC   time.Time
}

type entry struct {
	n         int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per interval per key.
func New(limit int, interval time.Duration) *Limiter {
	return &Limiter{
		counts:   make(map[string]*entry),
		limit:    limit,
		interval: interval,
		lastGC:   time.Now(),
	}
}

// Allow records a request for key and reports whether it is within the
// limit. Expired entries are swept lazily so no background goroutine is
// needed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastGC) > 2*l.interval {
		for k, e := range l.counts {
			if now.After(e.expiresAt) {
				delete(l.counts, k)
			}
		}
		l.lastGC = now
	}

	e, ok := l.counts[key]
	if !ok || now.After(e.expiresAt) {
		l.counts[key] = &entry{n: 1, expiresAt: now.Add(l.interval)}
		return true
	}
	if e.n >= l.limit {
		return false
	}
	e.n++
	return true
}

// Reset clears the counter for key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}

// Middleware rejects over-limit requests with a 429 JSON envelope, keyed
// by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":"rate_limited","message":"too many requests; try again later"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client IP, preferring proxy headers over
// RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
