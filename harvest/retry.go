package harvest

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/cmtharvest"
)

// StepFunc is a single navigation step that may be retried.
type StepFunc func(ctx context.Context) error

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for navigation retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return cmtharvest.DefaultRetryDelays()
}

// Retry runs step with backoff, retrying up to len(delays) times after the
// first attempt. Affordance absence, invalid session use and context errors
// are returned immediately because another attempt cannot change them.
func Retry(ctx context.Context, name string, step StepFunc, logger LogFunc, delays []time.Duration) error {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := step(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", name, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return lastErr
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, cmtharvest.ErrAffordanceAbsent):
		return false
	case errors.Is(err, context.Canceled):
		return false
	case cmtharvest.ErrorCode(err) == cmtharvest.EINVALID:
		return false
	}
	return true
}
