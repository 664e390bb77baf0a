package retry

import (
	"context"
	"errors"
	"fmt"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
)

// Config holds retry configuration
type Config struct {
	// MaxAttempts counts the first try; values below 1 mean a single attempt
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf decides whether an error is worth another attempt
	RetryIf func(error) bool
	Logger  logger.Logger
}

// DefaultRetryIf retries transport failures and 5xx, never a cancelled
// context.
func DefaultRetryIf(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errs.IsRetryable(err)
}

// Do runs op until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The last error is returned unwrapped so callers
// can still inspect its type.
func Do(ctx context.Context, cfg Config, op func() error) error {
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	if cfg.Backoff == nil {
		cfg.Backoff = &ConstantBackoff{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			if attempt > 1 {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		if attempt >= maxAttempts || !cfg.RetryIf(err) {
			return err
		}

		delay := cfg.Backoff.NextDelay(attempt)
		cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
			"delay_ms":     delay.Milliseconds(),
			"error":        err.Error(),
		})

		if werr := Wait(ctx, delay); werr != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}
