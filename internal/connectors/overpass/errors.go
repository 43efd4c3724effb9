package overpass

import (
	"errors"
	"fmt"
	"time"
)

// Overpass-specific errors.
var (
	// ErrNoEndpoints indicates the executor was configured with an
	// empty endpoint list.
	ErrNoEndpoints = errors.New("overpass: no endpoints configured")

	// ErrNoProgress indicates a retry round produced no observable
	// failure signal at all. This should not occur; the executor
	// aborts rather than spin.
	ErrNoProgress = errors.New("overpass: round made no progress")
)

// RateLimitError indicates an endpoint answered 429. RetryAfter holds
// the server-provided wait hint, zero when none was sent.
type RateLimitError struct {
	Endpoint   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("overpass: %s rate limited, retry after %s", e.Endpoint, e.RetryAfter)
	}
	return fmt.Sprintf("overpass: %s rate limited", e.Endpoint)
}

// ServerError indicates a transient server-side failure (502/503/504).
// The executor moves to the next endpoint immediately.
type ServerError struct {
	Endpoint   string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("overpass: %s returned %d", e.Endpoint, e.StatusCode)
}

// APIError indicates a non-transient HTTP failure.
type APIError struct {
	Endpoint   string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("overpass: %s returned %d", e.Endpoint, e.StatusCode)
}

// ExhaustedError indicates every endpoint failed in every round. It
// carries the last observed error for diagnostics.
type ExhaustedError struct {
	Rounds int
	Last   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("overpass: exhausted %d rounds, last error: %v", e.Rounds, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTransient checks if the error indicates a transient server failure
// that endpoint rotation can work around.
func IsTransient(err error) bool {
	var se *ServerError
	return errors.As(err, &se) || IsRateLimited(err)
}

// IsExhausted checks if the error indicates all retries were used up.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
