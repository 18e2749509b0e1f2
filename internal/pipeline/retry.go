package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/arifaulakh/AscentCast/internal/llm"
)

// RetryPolicy controls how LLM calls are retried. Only transient
// failures are retried; anything else fails immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Backoff returns the delay before retrying attempt n (0-indexed),
// with jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay * time.Duration(1<<uint(attempt))
	if base > p.MaxDelay || base <= 0 {
		base = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}

// Do runs call until it succeeds, fails non-transiently, exhausts
// attempts, or the context ends. It returns the result, the number of
// attempts made, and the last error.
func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt, err
		}
		result, err := call(ctx)
		if err == nil {
			return result, attempt + 1, nil
		}
		lastErr = err
		if !llm.IsTransient(err) || attempt == maxAttempts-1 {
			return "", attempt + 1, lastErr
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return "", attempt + 1, ctx.Err()
		}
	}
	return "", maxAttempts, lastErr
}
