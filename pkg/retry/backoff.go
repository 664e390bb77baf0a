package retry

import (
	"context"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before retry number attempt (1-based)
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff multiplies BaseDelay by Multiplier for every attempt
// after the first, stops growing at MaxDelay and spreads the result by
// +/- JitterFactor.
type ExponentialBackoff struct {
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64
}

// NewExponentialBackoff returns a doubling backoff from base, capped at 30x base
func NewExponentialBackoff(base time.Duration) *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:    base,
		MaxDelay:     30 * base,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 || eb.BaseDelay <= 0 {
		return 0
	}

	delay := eb.BaseDelay
	for i := 1; i < attempt && eb.Multiplier > 1; i++ {
		delay = time.Duration(float64(delay) * eb.Multiplier)
		if eb.MaxDelay > 0 && delay >= eb.MaxDelay {
			delay = eb.MaxDelay
			break
		}
	}
	return spread(delay, eb.JitterFactor)
}

// spread moves d by a random amount within +/- factor of itself
func spread(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return d
	}
	offset := (rand.Float64()*2 - 1) * factor * float64(d)
	if out := d + time.Duration(offset); out > 0 {
		return out
	}
	return 0
}

// ConstantBackoff waits the same Delay before every retry
type ConstantBackoff struct {
	Delay time.Duration
}

func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return cb.Delay
}

// Wait sleeps for delay unless ctx ends first
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
