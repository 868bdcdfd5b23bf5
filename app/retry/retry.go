package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// StatusError carries a non-2xx HTTP status through the retry policy so the
// retryable predicate can distinguish rate limits and server faults from
// permanent client errors.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, e.Status)
}

// IsRetryable reports whether an operation that failed with err is worth
// retrying: rate limits (429), server-side faults (5xx), and connection-level
// failures are; any other HTTP status is a permanent client error.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	// Connection resets, timeouts and other transport failures carry no
	// status and are treated as transient
	return true
}

type Policy struct {
	MaxAttempts int
	Delay       time.Duration // multiplied by the attempt number
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy returns the bounded-backoff policy applied uniformly to
// provider searches and record store reads and writes.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		Delay:       500 * time.Millisecond,
		MaxDelay:    3 * time.Second,
		Retryable:   IsRetryable,
	}
}

// Do invokes op up to MaxAttempts times, sleeping Delay multiplied by the
// attempt number (capped at MaxDelay) between attempts. It stops early when
// op succeeds, when the error is not retryable, or when ctx is cancelled.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Delay * time.Duration(attempt)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
