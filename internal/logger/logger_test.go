package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hustlex/admin-gateway/middleware"
)

func TestInitWithWriter_JSONAndLevel(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	InitWithWriter(&buf, Gateway)

	Log.Info().Msg("dropped")
	Log.Warn().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"message":"kept"`)
	assert.Contains(t, out, `"service":"admin-gateway"`)
}

func TestInitWithWriter_DefaultLevelPerBinary(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "")

	tests := []struct {
		name    string
		opts    Options
		service string
		lines   int
	}{
		{"gateway logs info", Gateway, `"service":"admin-gateway"`, 2},
		{"cli logs warnings only", CLI, `"service":"hxadmin"`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitWithWriter(&buf, tt.opts)

			Log.Info().Msg("info")
			Log.Warn().Msg("warn")

			assert.Equal(t, tt.lines, strings.Count(buf.String(), "\n"))
			assert.Contains(t, buf.String(), tt.service)
		})
	}
}

func TestInitWithWriter_BadLevelFallsBackAndWarns(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "loud")

	var buf bytes.Buffer
	InitWithWriter(&buf, Gateway)

	Log.Debug().Msg("debug")
	Log.Info().Msg("info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"log_level":"loud"`)
	assert.Contains(t, lines[0], `"using":"info"`)
	assert.Contains(t, lines[1], `"message":"info"`)
}

func TestCtx_AddsRequestAndSessionIDs(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")

	var buf bytes.Buffer
	InitWithWriter(&buf, Gateway)

	ctx := middleware.SetRequestIDForTest(context.Background(), "req-42")
	Ctx(ctx).Info().Msg("with id")
	Ctx(context.Background()).Info().Msg("without id")
	ctx = middleware.SetSessionForTest(ctx, "6f1c2d3e-aaaa-bbbb-cccc-000000000000", nil)
	Ctx(ctx).Info().Msg("with session")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"request_id":"req-42"`)
	assert.NotContains(t, lines[1], "request_id")
	assert.Contains(t, lines[2], `"session":"6f1c2d3e"`)
	assert.NotContains(t, lines[2], "aaaa", "full session id stays out of logs")
}
