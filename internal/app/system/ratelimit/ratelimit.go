// internal/app/system/ratelimit/ratelimit.go
//
// Package ratelimit guards the password login endpoint. Counting is
// fixed-window and in-memory: the ledger runs as a single process, so
// there is no shared state to coordinate.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quantrinhansu123/finance-up-sub001/internal/app/system/normalize"
)

// Limiter counts events per key within a fixed window. Safe for
// concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	window  time.Duration
	sweep   time.Duration
}

type bucket struct {
	hits    int
	resetAt time.Time
}

// New creates a limiter allowing max events per key per window.
func New(max int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		max:     max,
		window:  window,
		sweep:   2 * window,
	}
	go l.sweeper()
	return l
}

// Allow records one event for key and reports whether it fit in the
// current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{hits: 1, resetAt: now.Add(l.window)}
		return true
	}
	if b.hits >= l.max {
		return false
	}
	b.hits++
	return true
}

// Remaining reports how many more events key may record in the current
// window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || time.Now().After(b.resetAt) {
		return l.max
	}
	if left := l.max - b.hits; left > 0 {
		return left
	}
	return 0
}

// Reset forgets key entirely, restoring its full allowance.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *Limiter) sweeper() {
	ticker := time.NewTicker(l.sweep)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP resolves the caller's IP, trusting reverse-proxy headers
// before RemoteAddr. The app is deployed behind a proxy that sets
// X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
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

// LoginLimiter throttles login attempts on two axes: per source IP
// (spray across many accounts) and per target email (hammering one
// account from many IPs). Email keys are normalized so case and
// whitespace variants count against the same account.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter returns a login limiter with the service defaults:
// 8 attempts per IP per minute, 5 attempts per account per 10 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(8, time.Minute, 5, 10*time.Minute)
}

// NewLoginLimiterWithConfig returns a login limiter with explicit
// limits, mostly for tests.
func NewLoginLimiterWithConfig(ipMax int, ipWindow time.Duration, emailMax int, emailWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipMax, ipWindow),
		byEmail: New(emailMax, emailWindow),
	}
}

// Check records a login attempt and reports whether it may proceed.
// When blocked, the second return value is a safe message for the
// client; it never distinguishes the IP limit from the account limit,
// so callers cannot learn whether an email is being targeted.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	const blocked = "too many login attempts, try again later"

	if !ll.byIP.Allow(ClientIP(r)) {
		return false, blocked
	}
	if email != "" {
		if !ll.byEmail.Allow(normalize.Email(email)) {
			return false, blocked
		}
	}
	return true, ""
}

// ResetEmail restores an account's allowance after a successful login,
// so a user who mistyped their password a few times is not locked out
// of their next session.
func (ll *LoginLimiter) ResetEmail(email string) {
	if email != "" {
		ll.byEmail.Reset(normalize.Email(email))
	}
}
