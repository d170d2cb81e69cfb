package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"
)

// csrfTokenForHour computes a hex HMAC-SHA256 token for the hour bucket
// (Unix time truncated to the hour).
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

func (a *API) generateCSRFToken() string {
	bucket := time.Now().UTC().Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken accepts the current or previous hour bucket.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	currentBucket := time.Now().UTC().Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	return hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(currentBucket))) ||
		hmac.Equal([]byte(token), []byte(a.csrfTokenForHour(prevBucket)))
}

// Login is called without a prior token fetch.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
}

// checkCSRF enforces the X-CSRF-Token header on state-changing methods.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

// attemptLimiter counts attempts per key in fixed windows. Keys whose window has
// passed are swept on the next call.
type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	buckets map[string]attemptWindow
	now     func() time.Time
}

type attemptWindow struct {
	started time.Time
	count   int
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, buckets: make(map[string]attemptWindow), now: time.Now}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, b := range l.buckets {
		if now.Sub(b.started) >= l.window {
			delete(l.buckets, k)
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = attemptWindow{started: now}
	}
	if b.count >= l.max {
		return false
	}
	b.count++
	l.buckets[key] = b
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}
