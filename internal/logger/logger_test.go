package logger

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.WarnLevel, false},
		{"debug", log.DebugLevel, false},
		{"info", log.InfoLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.WarnLevel)

	l.Rendered("page.wiki", "html", 10, time.Millisecond)
	assert.Empty(t, buf.String())

	l.CacheError("store", errors.New("disk full"))
	out := buf.String()
	assert.Contains(t, out, "cache error")
	assert.Contains(t, out, "disk full")
}

func TestLogger_DebugFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.Compiled("page.wiki", true, 42)
	out := buf.String()
	assert.Contains(t, out, "compiled")
	assert.Contains(t, out, "static=true")
	assert.Contains(t, out, "bytes=42")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().CacheHit("abc")
	})
}
