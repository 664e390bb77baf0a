package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      logger.NewTestLogger(),
	}
}

func TestExponentialBackoff(t *testing.T) {
	eb := &ExponentialBackoff{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, 100*time.Millisecond, eb.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, eb.NextDelay(3))
	assert.Equal(t, time.Second, eb.NextDelay(10), "capped at max delay")
}

func TestExponentialBackoffJitter(t *testing.T) {
	eb := NewExponentialBackoff(100 * time.Millisecond)
	for i := 0; i < 50; i++ {
		d := eb.NextDelay(1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeResponse, Code: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	calls := 0
	cfg := fastConfig(2)
	err := Do(context.Background(), cfg, func() error {
		calls++
		return errs.New(errs.ErrorTypeRequest, "https://example.com", "connection refused")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, errs.IsType(err, errs.ErrorTypeRequest), "last error keeps its type")
	assert.True(t, cfg.Logger.(*logger.TestLogger).HasMessage("retrying operation"))
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeResponse, Code: 404}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Hour}}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, cfg, func() error {
		calls++
		return errs.New(errs.ErrorTypeRequest, "u", "timeout")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Equal(t, 1, calls)
}

func TestExponentialBackoffWithoutGrowth(t *testing.T) {
	eb := &ExponentialBackoff{BaseDelay: 50 * time.Millisecond, Multiplier: 1}
	assert.Equal(t, 50*time.Millisecond, eb.NextDelay(4))

	zero := &ExponentialBackoff{}
	assert.Equal(t, time.Duration(0), zero.NextDelay(3))
}

func TestUntypedErrorsArePermanent(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}
