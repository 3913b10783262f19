package provider

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitedError signals that a provider's quota is exhausted. It carries
// an estimated reset time and triggers fallback-provider retry upstream; it
// is never user-visible.
type RateLimitedError struct {
	Provider string
	ResetAt  time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s rate limited until %s", e.Provider, e.ResetAt.Format(time.RFC3339))
}

// ProviderError is any non-quota acquisition failure: network, HTTP status,
// or response parsing. It causes the attempt to yield nothing, not a crash.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is (or wraps) a RateLimitedError.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
