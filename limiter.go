package site

import (
	"sync"
	"time"
)

// loginLimiter is a simple per-IP rate limiter for admin login attempts.
// Only failed attempts are recorded, so a busy admin cannot lock themselves
// out by logging in repeatedly.
type loginLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	max      int
	window   time.Duration
}

func newLoginLimiter(max int, window time.Duration) *loginLimiter {
	return &loginLimiter{
		failures: make(map[string][]time.Time),
		max:      max,
		window:   window,
	}
}

// Check reports whether the IP is still under the failure limit for the
// window. Stale entries are pruned as they are touched.
func (l *loginLimiter) Check(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.prune(ip)
	return len(kept) < l.max
}

// Record notes one failed login attempt for the IP.
func (l *loginLimiter) Record(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[ip] = append(l.prune(ip), time.Now())
}

func (l *loginLimiter) prune(ip string) []time.Time {
	cutoff := time.Now().Add(-l.window)
	hits := l.failures[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.failures[ip] = kept
	return kept
}
