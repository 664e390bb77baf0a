// Package logger wraps zerolog behind a small structured logging interface.
//
// Components receive a Logger at construction and attach context with
// WithField/WithFields:
//
//	log := logger.GetLogger().WithField("component", "pool")
//	log.DebugWithFields("post committed", map[string]interface{}{
//	    "post_id": post.ID,
//	    "dir":     dir,
//	})
//
// Console output is written to stderr. Tests use NewTestLogger to capture
// messages or NewNopLogger to discard them.
package logger
