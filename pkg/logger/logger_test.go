package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wvdl/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"warn level", &config.LoggingConfig{Level: "warn"}, false},
		{"debug level", &config.LoggingConfig{Level: "debug"}, false},
		{"invalid level", &config.LoggingConfig{Level: "chatty"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "wvdl.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
			if tt.cfg.File != "" {
				_, err := os.Stat(tt.cfg.File)
				assert.NoError(t, err, "log file should be created")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.WarnLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("post_id", int64(42)).
		WithFields(map[string]interface{}{"feed": "moments"}).
		WithError(errors.New("boom")).
		InfoWithFields("processed", map[string]interface{}{
			"elapsed": 3 * time.Millisecond,
			"skipped": true,
		})

	out := buf.String()
	for _, want := range []string{`"post_id":42`, `"feed":"moments"`, `"error":"boom"`, `"skipped":true`, `"message":"processed"`} {
		assert.Contains(t, out, want)
	}
}

func TestChildLoggersDoNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	_ = l.WithField("a", "1")
	l.Warn("plain")

	assert.NotContains(t, buf.String(), `"a"`)
}

func TestDisabledLevelWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	zlog := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	l := &zerologLogger{logger: &zlog}

	l.DebugWithFields("hidden", map[string]interface{}{"x": 1})
	l.Error("shown")

	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.Contains(t, buf.String(), "shown")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "pool")
	child.WithError(errors.New("bad")).ErrorWithFields("failed", map[string]interface{}{"post_id": 1})
	tl.Info("hello")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "pool", msgs[0].Fields["component"])
	assert.Equal(t, 1, msgs[0].Fields["post_id"])
	assert.EqualError(t, msgs[0].Error, "bad")
	assert.True(t, tl.HasError())
	assert.True(t, tl.HasMessage("hello"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, WithField("k", "v"))
}
