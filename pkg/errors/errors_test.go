package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := &Error{
		Type:    ErrorTypeResponse,
		Message: "post request failed",
		Code:    404,
		Target:  "https://example.com/posts/1",
	}
	assert.Equal(t, "post request failed: https://example.com/posts/1 (status 404)", err.Error())

	wrapped := Wrap(ErrorTypeFileIO, "/tmp/x", "creating file", fmt.Errorf("disk full"))
	assert.Equal(t, "creating file: /tmp/x: disk full", wrapped.Error())
}

func TestIsType(t *testing.T) {
	inner := New(ErrorTypeAuthRequired, "https://example.com", "password rejected")
	outer := fmt.Errorf("refetch: %w", inner)

	assert.True(t, IsType(outer, ErrorTypeAuthRequired))
	assert.False(t, IsType(outer, ErrorTypeResponse))
	assert.Equal(t, ErrorTypeAuthRequired, TypeOf(outer))

	nested := Wrap(ErrorTypeMediaFetch, "u", "media", Wrap(ErrorTypeRequest, "u", "dial", stderrors.New("refused")))
	assert.True(t, IsType(nested, ErrorTypeRequest))
	assert.Equal(t, ErrorTypeMediaFetch, TypeOf(nested))

	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.False(t, IsType(nil, ErrorTypeRequest))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport failure", New(ErrorTypeRequest, "u", "dial"), true},
		{"server error", &Error{Type: ErrorTypeResponse, Code: 503}, true},
		{"too many requests", &Error{Type: ErrorTypePagination, Code: 429}, false},
		{"not found", &Error{Type: ErrorTypeResponse, Code: 404}, false},
		{"wrong password", &Error{Type: ErrorTypeAuthRequired, Code: 401}, false},
		{"file io", New(ErrorTypeFileIO, "/tmp", "write"), false},
		{"wrapped transport failure", Wrap(ErrorTypeMediaFetch, "u", "media", New(ErrorTypeRequest, "u", "reset")), true},
		{"untyped", stderrors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
