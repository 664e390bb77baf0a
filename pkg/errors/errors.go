package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeArtistLookup  ErrorType = "artist_lookup"
	ErrorTypePagination    ErrorType = "pagination"
	ErrorTypeMissingCursor ErrorType = "missing_cursor"
	ErrorTypePostType      ErrorType = "post_type"
	ErrorTypeAuthRequired  ErrorType = "auth_required"
	ErrorTypeRequest       ErrorType = "request"
	ErrorTypeResponse      ErrorType = "response"
	ErrorTypeMediaFetch    ErrorType = "media_fetch"
	ErrorTypeFileIO        ErrorType = "file_io"
	ErrorTypeStdinClosed   ErrorType = "stdin_closed"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a typed failure carrying the URL or path it concerns.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Target  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Target != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Target)
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a typed error.
func New(t ErrorType, target, message string) *Error {
	return &Error{Type: t, Target: target, Message: message}
}

// Wrap builds a typed error around cause.
func Wrap(t ErrorType, target, message string, cause error) *Error {
	return &Error{Type: t, Target: target, Message: message, Err: cause}
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether any *Error in err's chain has type t.
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}

// IsRetryable reports whether err wraps a transport failure or carries a
// status that may succeed on a later attempt. Password POSTs never reach
// this check.
func IsRetryable(err error) bool {
	if IsType(err, ErrorTypeRequest) {
		return true
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	switch e.Type {
	case ErrorTypeResponse, ErrorTypeMediaFetch, ErrorTypePagination, ErrorTypeArtistLookup:
		return IsRetryableStatusCode(e.Code)
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable
// error. 429 is not one: throttling is reported as a failure.
func IsRetryableStatusCode(statusCode int) bool {
	return statusCode >= 500
}
