package bookingapi

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"time"
)

// RetryConfig drives WithRetry. Delay doubles after every failed attempt.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Jitter      bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Delay: time.Second}
}

// WithRetry runs fn until it succeeds or MaxAttempts is reached, sleeping
// Delay * 2^(attempt-1) between attempts. It is opt-in: the client itself
// never retries except once after a 401.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}
		if !sleepCtx(ctx, backoff(cfg.Delay, attempt-1, cfg.Jitter)) {
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// backoff returns base * 2^i, plus up to 50% jitter when asked.
func backoff(base time.Duration, i int, jitter bool) time.Duration {
	d := time.Duration(1<<i) * base
	if !jitter {
		return d
	}
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return d
	}
	f := float64(b[0]) / 255.0
	return d + time.Duration(0.5*f*float64(d))
}
