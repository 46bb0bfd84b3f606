package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hustlex/admin-gateway/middleware"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin@hustlex.ng", "ad***@hustlex.ng"},
		{"a@hustlex.ng", "a***@hustlex.ng"},
		{"abc", "***"},
		{"noatsign", "no***"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, maskEmail(tt.in))
		})
	}
}

func TestLogger_Events(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))
	ctx := middleware.SetRequestIDForTest(context.Background(), "req-1")

	l.LoginFailed(ctx, "admin@hustlex.ng", "10.0.0.1", "invalid_credentials")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, true, entry["audit"])
	assert.Equal(t, "login_failed", entry["action"])
	assert.Equal(t, "ad***@hustlex.ng", entry["email"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.NotContains(t, buf.String(), "admin@hustlex.ng")
}
