package ratelimit

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter is what HTTP callers need from a connection gate.
type Limiter interface {
	// Acquire blocks until a request slot is free. The returned func
	// releases the slot and must be called exactly once.
	Acquire(ctx context.Context) (release func(), err error)
}

// Gate bounds the number of HTTP requests in flight across the whole
// process and can optionally pace request starts.
type Gate struct {
	sem     *semaphore.Weighted
	pace    *rate.Limiter
	size    int
	current atomic.Int64
	peak    atomic.Int64
}

// NewGate creates a gate admitting at most maxInFlight concurrent requests.
// requestsPerSecond <= 0 disables pacing.
func NewGate(maxInFlight int, requestsPerSecond float64) *Gate {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	g := &Gate{
		sem:  semaphore.NewWeighted(int64(maxInFlight)),
		size: maxInFlight,
	}
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		g.pace = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return g
}

// Acquire implements Limiter
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if g.pace != nil {
		if err := g.pace.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.current.Add(-1)
			g.sem.Release(1)
		}
	}, nil
}

// Size returns the configured concurrency bound.
func (g *Gate) Size() int {
	return g.size
}

// InFlight returns the number of requests currently holding a slot.
func (g *Gate) InFlight() int {
	return int(g.current.Load())
}

// Peak returns the highest number of simultaneous requests observed.
func (g *Gate) Peak() int {
	return int(g.peak.Load())
}
