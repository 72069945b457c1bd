package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	visitorSweepEvery = 5 * time.Minute
	visitorIdleAfter  = 10 * time.Minute
)

// visitorLimiter hands out tokens per client so one caller hammering the
// campaign endpoints cannot starve everyone else. Buckets refill continuously
// at perSecond and cap at burst.
type visitorLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*tokenBucket
	perSecond float64
	burst     float64
	lastSweep time.Time
	now       func() time.Time
}

type tokenBucket struct {
	tokens   float64
	refilled time.Time
}

func newVisitorLimiter(perSecond float64, burst int) *visitorLimiter {
	return &visitorLimiter{
		visitors:  make(map[string]*tokenBucket),
		perSecond: perSecond,
		burst:     float64(burst),
		now:       time.Now,
	}
}

// allow refills the caller's bucket for the time elapsed since its last
// request and spends one token if available.
func (l *visitorLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	b := l.visitors[client]
	if b == nil {
		b = &tokenBucket{tokens: l.burst, refilled: now}
		l.visitors[client] = b
	}
	b.tokens += now.Sub(b.refilled).Seconds() * l.perSecond
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.refilled = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweepLocked drops buckets idle past the cutoff. It runs on the request path
// at most once per sweep interval, so no background goroutine is needed.
func (l *visitorLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < visitorSweepEvery {
		return
	}
	l.lastSweep = now
	cutoff := now.Add(-visitorIdleAfter)
	for client, b := range l.visitors {
		if b.refilled.Before(cutoff) {
			delete(l.visitors, client)
		}
	}
}

// RateLimit rejects callers exceeding rate requests per second (with the given
// burst headroom) with 429 Too Many Requests. Callers are keyed by client IP.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := newVisitorLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := r.RemoteAddr
			// Prefer X-Real-Ip set by chi's RealIP middleware.
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				client = xri
			}
			if !limiter.allow(client) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
