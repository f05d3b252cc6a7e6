package remote

import (
	"fmt"
	"time"
)

// ErrUnavailable is a transient service failure: 5xx, timeout or a
// connection error. Safe to retry.
type ErrUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrUnavailable) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("learning service unavailable (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("learning service unavailable: %v", e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrRateLimited is a 429 response. RetryAfter is zero when the server
// sent no hint.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return "learning service rate limited"
}

// ErrRejected is a non-retryable 4xx response: the request itself is
// wrong, retrying will not help.
type ErrRejected struct {
	StatusCode int
	Body       string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("learning service rejected request (status %d): %s", e.StatusCode, e.Body)
}
