package apiclient

import (
	"context"
	"time"
)

// RetryConfig controls how many times and how long a call is retried.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns 3 retries starting at 1s and capped at 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// Delay returns the wait before retry number attempt (0-based): min(BaseDelay*2^attempt, MaxDelay).
// A non-positive BaseDelay means no wait.
func (c RetryConfig) Delay(attempt int) time.Duration {
	if c.BaseDelay <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	delay := c.BaseDelay
	for i := 0; i < attempt; i++ {
		if delay > c.MaxDelay/2 {
			return c.MaxDelay
		}
		delay *= 2
	}
	return min(delay, c.MaxDelay)
}

// Sleeper waits between attempts.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper sleeps on a real timer and returns early with ctx.Err() on cancellation.
var TimerSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
})

// retryableStatus reports whether an HTTP status is worth retrying: 429 or any 5xx.
func retryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}
