package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Info().Str("component", "engine").Msg("sync complete")

	out := buf.String()
	assert.Contains(t, out, `"component":"engine"`)
	assert.Contains(t, out, `"message":"sync complete"`)
}

func TestSetDefault(t *testing.T) {
	old := *Default()
	defer SetDefault(old)

	var buf bytes.Buffer
	SetDefault(New(&buf))
	Default().Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger(t)
	tl.Debug().Str("k", "v").Msg("captured")

	assert.True(t, tl.Contains("captured"))
	assert.Len(t, tl.Lines(), 1)
	assert.True(t, strings.Contains(tl.Lines()[0], `"k":"v"`))
}
