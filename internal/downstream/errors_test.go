package downstream

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"envelope", 403, `{"error":{"code":"forbidden","message":"admins only"}}`, "forbidden", "admins only"},
		{"flat", 400, `{"code":"bad_request","message":"missing email"}`, "bad_request", "missing email"},
		{"string error", 409, `{"error":"already exists"}`, "downstream_error", "already exists"},
		{"html", 502, `<html>bad gateway</html>`, "downstream_error", "unexpected status: 502"},
		{"empty", 500, ``, "downstream_error", "unexpected status: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeError(response(tt.status, tt.body))

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.message, se.Message)
		})
	}
}

func TestStatusError_Is(t *testing.T) {
	assert.ErrorIs(t, &StatusError{StatusCode: 401}, ErrUnauthorized)
	assert.ErrorIs(t, &StatusError{StatusCode: 404}, ErrNotFound)
	assert.NotErrorIs(t, &StatusError{StatusCode: 403}, ErrUnauthorized)

	wrapped := errors.Join(errors.New("graph"), &StatusError{StatusCode: 401})
	assert.ErrorIs(t, wrapped, ErrUnauthorized)
}
