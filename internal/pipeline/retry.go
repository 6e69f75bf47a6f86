package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/ctidoc/internal/sink"
)

// MaxRetries is the number of write attempts per output.
const MaxRetries = 3

// IsRetryable reports whether a sink failure is transient (HTTP 429/5xx,
// network errors, broker or bucket unavailable).
func IsRetryable(err error) bool {
	var retryErr *sink.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retry calls write until it succeeds, fails permanently, or MaxRetries
// attempts are spent. onRetry sees each transient failure before the wait.
// A canceled ctx ends the wait with ctx.Err().
func retry(ctx context.Context, backoff func(int) time.Duration, write func() error, onRetry func(attempt int, err error)) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = write()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt, lastErr)
		}
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
