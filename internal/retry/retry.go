package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Config holds the configuration for retry logic
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns the retry configuration used for remote artifact fetches
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// ErrorChecker reports whether err is transient and worth another attempt
type ErrorChecker func(err error) bool

// Options configures retry behavior
type Options struct {
	Config       Config
	ErrorChecker ErrorChecker
	Logger       *slog.Logger
	Operation    string
}

// calculateDelay computes the delay for the given attempt using exponential backoff
func (c Config) calculateDelay(attempt int) time.Duration {
	multiple := c.BackoffMultiple
	if multiple < 1 {
		multiple = 1
	}
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(multiple, float64(attempt)))
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

func (c Config) backoff() goretry.Backoff {
	attempt := 0
	next := goretry.BackoffFunc(func() (time.Duration, bool) {
		d := c.calculateDelay(attempt)
		attempt++
		return d, false
	})

	maxRetries := uint64(0)
	if c.MaxRetries > 0 {
		maxRetries = uint64(c.MaxRetries)
	}
	return goretry.WithMaxRetries(maxRetries, next)
}

// Do runs fn until it succeeds, returns a non-retryable error, exhausts
// Config.MaxRetries, or ctx is done. The last error from fn is returned.
func Do[T any](ctx context.Context, opts Options, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := goretry.Do(ctx, opts.Config.backoff(), func(ctx context.Context) error {
		current := attempt
		attempt++

		value, err := fn(ctx, current)
		if err == nil {
			result = value
			if current > 0 && opts.Logger != nil {
				opts.Logger.Info("retry succeeded", "operation", opts.Operation, "attempt", current+1)
			}
			return nil
		}

		if opts.ErrorChecker != nil && opts.ErrorChecker(err) {
			if opts.Logger != nil {
				opts.Logger.Warn("retryable error",
					"operation", opts.Operation,
					"attempt", current+1,
					"max_attempts", opts.Config.MaxRetries+1,
					"err", err,
				)
			}
			return goretry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
