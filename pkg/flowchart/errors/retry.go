package errors

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures WithRetry and WithRetryContext.
type RetryConfig struct {
	// MaxAttempts counts the first attempt. Values below 1 mean 1.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay. Zero means no cap.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the delay after each retry. Values below 1
	// mean 1, a fixed delay.
	BackoffFactor float64

	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64

	// RetryableFunc overrides IsRetryable.
	RetryableFunc func(error) bool

	// OnRetry is called after a retryable failure, before sleeping.
	// attempt counts from 1.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// FixedRetry makes five attempts one second apart.
var FixedRetry = RetryConfig{
	MaxAttempts:    5,
	InitialBackoff: time.Second,
	MaxBackoff:     time.Second,
	BackoffFactor:  1,
}

// NoRetry runs once.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// RetryResult is the outcome of a retried call.
type RetryResult[T any] struct {
	// Value is set when Err is nil.
	Value T

	// Err is a *CategorizedError wrapping the last failure.
	Err error

	// Attempts made, including the first.
	Attempts int

	// Duration includes the time spent sleeping.
	Duration time.Duration
}

// WithRetry is WithRetryContext without cancellation.
func WithRetry[T any](cfg RetryConfig, fn func() (T, error)) RetryResult[T] {
	return WithRetryContext(context.Background(), cfg, func(context.Context) (T, error) {
		return fn()
	})
}

// WithRetryContext calls fn until it succeeds, fails with a non-retryable
// error, runs out of attempts or ctx ends.
func WithRetryContext[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(context.Context) (T, error),
) RetryResult[T] {
	cfg = cfg.withDefaults()
	start := time.Now()
	fail := func(err error, category Category, attempts int, what string) RetryResult[T] {
		return RetryResult[T]{
			Err:      &CategorizedError{Err: err, Category: category, Attempts: attempts, Context: what},
			Attempts: attempts,
			Duration: time.Since(start),
		}
	}

	delay := cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fail(err, CategoryPermanent, attempt-1, "context cancelled")
		}

		v, err := fn(ctx)
		switch {
		case err == nil:
			return RetryResult[T]{Value: v, Attempts: attempt, Duration: time.Since(start)}
		case !cfg.RetryableFunc(err):
			return fail(err, CategoryPermanent, attempt, "")
		case attempt >= cfg.MaxAttempts:
			return fail(err, CategoryTransient, attempt, "max retries exceeded")
		}

		wait := calculateBackoff(delay, cfg.Jitter)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return fail(err, CategoryPermanent, attempt, "context cancelled during backoff")
		}
		delay = cfg.nextBackoff(delay)
	}
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	if cfg.RetryableFunc == nil {
		cfg.RetryableFunc = IsRetryable
	}
	return cfg
}

func (cfg RetryConfig) nextBackoff(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * cfg.BackoffFactor)
	if cfg.MaxBackoff > 0 && d > cfg.MaxBackoff {
		d = cfg.MaxBackoff
	}
	return d
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// calculateBackoff spreads base by up to jitter in either direction.
func calculateBackoff(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || base <= 0 {
		return base
	}
	spread := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + spread)
}

// RetryOption adjusts a RetryConfig.
type RetryOption func(*RetryConfig)

// NewRetryConfig starts from FixedRetry and applies opts.
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	cfg := FixedRetry
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithMaxAttempts sets the attempt budget.
func WithMaxAttempts(n int) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxAttempts = n }
}

// WithDelay sets a fixed delay between attempts.
func WithDelay(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) {
		cfg.InitialBackoff = d
		cfg.MaxBackoff = d
		cfg.BackoffFactor = 1
	}
}

// WithRetryableFunc replaces IsRetryable.
func WithRetryableFunc(fn func(error) bool) RetryOption {
	return func(cfg *RetryConfig) { cfg.RetryableFunc = fn }
}

// WithOnRetry sets the retry callback.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) RetryOption {
	return func(cfg *RetryConfig) { cfg.OnRetry = fn }
}
