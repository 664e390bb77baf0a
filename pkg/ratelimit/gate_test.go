package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateBoundsConcurrency(t *testing.T) {
	gate := NewGate(3, 0)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := gate.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			assert.LessOrEqual(t, gate.InFlight(), 3)
			time.Sleep(5 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, gate.Size())
	assert.LessOrEqual(t, gate.Peak(), 3)
	assert.GreaterOrEqual(t, gate.Peak(), 1)
	assert.Equal(t, 0, gate.InFlight())
}

func TestGateReleaseIsIdempotent(t *testing.T) {
	gate := NewGate(1, 0)

	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	release()
	release()
	assert.Equal(t, 0, gate.InFlight())

	release, err = gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()
	assert.Equal(t, 1, gate.InFlight())
}

func TestGateAcquireHonoursContext(t *testing.T) {
	gate := NewGate(1, 0)
	release, err := gate.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = gate.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGatePacing(t *testing.T) {
	gate := NewGate(10, 20) // burst of 20, then one every 50ms

	start := time.Now()
	for i := 0; i < 22; i++ {
		release, err := gate.Acquire(context.Background())
		require.NoError(t, err)
		release()
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestNewGateClampsSize(t *testing.T) {
	assert.Equal(t, 1, NewGate(0, 0).Size())
}
