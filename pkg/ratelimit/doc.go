// Package ratelimit bounds outbound HTTP concurrency.
//
// Gate is a process-wide counting semaphore: every API call and media
// download acquires one slot, so at most max_connections requests are in
// flight no matter how many pagination tasks or workers are running. An
// optional requests-per-second pace can be layered on top.
//
//	gate := ratelimit.NewGate(cfg.MaxConnections, cfg.HTTP.RequestsPerSecond)
//	release, err := gate.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer release()
package ratelimit
