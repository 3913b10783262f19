package provider

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DefaultBackoffWindow is the pessimistic reset window assumed when a
// provider signals quota exhaustion without a usable reset header.
const DefaultBackoffWindow = time.Hour

// RateLimitTracker tracks one provider's quota state for the lifetime of
// the process. Remaining is monotonically non-increasing between resets; a
// reset restores it to the provider's assumed ceiling. Mutations are
// last-writer-wins; the mutex only keeps them individually atomic.
type RateLimitTracker struct {
	mu        sync.Mutex
	ceiling   int
	remaining int
	resetAt   time.Time

	now func() time.Time // test hook
}

// NewRateLimitTracker creates a tracker starting at the given ceiling.
func NewRateLimitTracker(ceiling int) *RateLimitTracker {
	return &RateLimitTracker{
		ceiling:   ceiling,
		remaining: ceiling,
		now:       time.Now,
	}
}

// Check reports whether a request may be issued. If the reset time has
// passed, the remaining count is optimistically restored to the ceiling.
func (t *RateLimitTracker) Check() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining > 0 {
		return true
	}
	if !t.now().Before(t.resetAt) {
		t.remaining = t.ceiling
		return true
	}
	return false
}

// Consume records one issued request.
func (t *RateLimitTracker) Consume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
}

// MarkLimited pessimistically zeroes the tracker. A zero resetAt falls back
// to now plus the default backoff window.
func (t *RateLimitTracker) MarkLimited(resetAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remaining = 0
	if resetAt.IsZero() {
		resetAt = t.now().Add(DefaultBackoffWindow)
	}
	t.resetAt = resetAt
}

// Observe applies rate-limit headers from a successful response, if present.
func (t *RateLimitTracker) Observe(h http.Header) {
	remaining, ok := parseIntHeader(h, "X-Ratelimit-Remaining")
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	// Only ever ratchet down between resets.
	if remaining < t.remaining {
		t.remaining = remaining
	}
	if reset, ok := parseResetHeader(h, t.now()); ok {
		t.resetAt = reset
	}
}

// ResetAt returns the currently assumed reset time.
func (t *RateLimitTracker) ResetAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resetAt
}

// Remaining returns the currently assumed remaining quota.
func (t *RateLimitTracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// ResetFromHeaders extracts a reset time from a rate-limited response.
// Returns the zero time when no header is parseable, in which case callers
// fall back to the default backoff window.
func ResetFromHeaders(h http.Header, now time.Time) time.Time {
	if reset, ok := parseResetHeader(h, now); ok {
		return reset
	}
	return time.Time{}
}

func parseIntHeader(h http.Header, key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseResetHeader accepts either an epoch timestamp or a delta in seconds,
// which is how the various providers disagree about X-Ratelimit-Reset.
func parseResetHeader(h http.Header, now time.Time) (time.Time, bool) {
	n, ok := parseIntHeader(h, "X-Ratelimit-Reset")
	if !ok {
		n, ok = parseIntHeader(h, "Retry-After")
		if !ok {
			return time.Time{}, false
		}
	}
	if n <= 0 {
		return time.Time{}, false
	}
	// Heuristic: anything that looks like an epoch is one.
	if n > 1_000_000_000 {
		return time.Unix(int64(n), 0), true
	}
	return now.Add(time.Duration(n) * time.Second), true
}
