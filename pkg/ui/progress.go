package ui

import (
	"fmt"
	"sync/atomic"
	"time"
)

// StatusTracker counts post outcomes for the end-of-run summary. It is safe
// for concurrent use by workers.
type StatusTracker struct {
	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	retried    atomic.Int64
	StartTime  time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		StartTime: time.Now(),
	}
}

func (st *StatusTracker) IncrementDownloaded() { st.downloaded.Add(1) }
func (st *StatusTracker) IncrementSkipped()    { st.skipped.Add(1) }
func (st *StatusTracker) IncrementFailed()     { st.failed.Add(1) }

// IncrementRetried counts a wrong password that sent a post back to the queue
func (st *StatusTracker) IncrementRetried() { st.retried.Add(1) }

func (st *StatusTracker) Downloaded() int64 { return st.downloaded.Load() }
func (st *StatusTracker) Skipped() int64    { return st.skipped.Load() }
func (st *StatusTracker) Failed() int64     { return st.failed.Load() }
func (st *StatusTracker) Retried() int64    { return st.retried.Load() }

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate (posts per minute)
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Downloaded()) / elapsed
}

// Summary formats the final counters as one line
func (st *StatusTracker) Summary() string {
	return fmt.Sprintf("%s downloaded, %s skipped, %s failed in %s",
		Green(st.Downloaded()),
		Yellow(st.Skipped()),
		Red(st.Failed()),
		st.GetElapsedTime().Round(time.Second))
}

// Metrics returns the counters as log fields
func (st *StatusTracker) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"downloaded":   st.Downloaded(),
		"skipped":      st.Skipped(),
		"failed":       st.Failed(),
		"retried":      st.Retried(),
		"duration":     st.GetElapsedTime(),
		"rate_per_min": st.GetDownloadRate(),
	}
}
