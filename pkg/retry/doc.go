// Package retry re-runs idempotent operations that fail with transient
// transport errors (connection failures, 5xx) using a pluggable
// backoff strategy.
//
//	err := retry.Do(ctx, retry.Config{
//	    MaxAttempts: 3,
//	    Backoff:     retry.NewExponentialBackoff(time.Second),
//	    Logger:      log,
//	}, func() error {
//	    return fetchPage(ctx)
//	})
//
// Requests that carry a post password are never retried.
package retry
