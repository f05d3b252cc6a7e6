package remote

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"vocadrill/internal/practice"
)

// RetryConfig tunes the backoff of the retrying decorator.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryService is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryService struct {
	inner  practice.LearningService
	config RetryConfig
}

var _ practice.LearningService = (*RetryService)(nil)

// WithRetry wraps a LearningService with retry logic.
func WithRetry(inner practice.LearningService, cfg RetryConfig) *RetryService {
	return &RetryService{inner: inner, config: cfg}
}

func (r *RetryService) SubmitAnswer(ctx context.Context, sub practice.AnswerSubmission) error {
	return r.retry(ctx, func() error {
		return r.inner.SubmitAnswer(ctx, sub)
	})
}

func (r *RetryService) SubmitAnswerBatch(ctx context.Context, sessionID string, results []practice.BatchResult) error {
	return r.retry(ctx, func() error {
		return r.inner.SubmitAnswerBatch(ctx, sessionID, results)
	})
}

func (r *RetryService) FinalizeSession(ctx context.Context, sessionID string, durationSeconds int) (*practice.FinalizeResult, error) {
	var result *practice.FinalizeResult
	err := r.retry(ctx, func() error {
		var err error
		result, err = r.inner.FinalizeSession(ctx, sessionID, durationSeconds)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RetryService) FetchStreakStatus(ctx context.Context) (*practice.StreakStatus, error) {
	var status *practice.StreakStatus
	err := r.retry(ctx, func() error {
		var err error
		status, err = r.inner.FetchStreakStatus(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (r *RetryService) retry(ctx context.Context, call func() error) error {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		// Last attempt, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

// shouldRetry determines if an error is retryable.
func shouldRetry(err error) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// A rejected request is wrong, not transient.
	var rejected *ErrRejected
	if errors.As(err, &rejected) {
		return false
	}

	var rl *ErrRateLimited
	if errors.As(err, &rl) {
		return true
	}
	var unavail *ErrUnavailable
	if errors.As(err, &unavail) {
		return true
	}

	// Other errors (network, etc.) are treated as transient.
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryService) backoff(attempt int, err error) time.Duration {
	// Respect Retry-After for rate limits.
	var rl *ErrRateLimited
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
