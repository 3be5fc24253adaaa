package harvest

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces page requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewPageLimiter returns a token bucket allowing pagesPerSecond page
// requests with a burst of 1. A non-positive rate disables pacing.
func NewPageLimiter(pagesPerSecond float64) *rate.Limiter {
	if pagesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(pagesPerSecond), 1)
}
