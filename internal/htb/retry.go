package htb

import (
	"context"
	"math"
	"time"
)

// Backoff configures the wait between retries of a throttled request.
type Backoff struct {
	MaxRetries int           // retries after the first attempt
	Initial    time.Duration // wait before the first retry
	Max        time.Duration // cap on a single wait
	Multiplier float64       // growth per retry; 1 keeps the wait fixed
}

// DefaultBackoff mirrors the platform's documented throttle window: a fixed
// 20 second wait, retried a bounded number of times.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxRetries: 5,
		Initial:    20 * time.Second,
		Max:        5 * time.Minute,
		Multiplier: 1,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(b.Initial) * math.Pow(mult, float64(attempt))

	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}

	return time.Duration(d)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
