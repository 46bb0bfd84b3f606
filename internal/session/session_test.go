package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", `"token"`, "{"} {
		_, err := New([]byte(raw))
		assert.Error(t, err, "payload %q", raw)
	}
}

func TestSession_RoleAndUser(t *testing.T) {
	s, err := New([]byte(`{"role":"super_admin","user":{"id":"u-1","email":"admin@hustlex.ng"}}`))
	require.NoError(t, err)

	role, ok := s.Role()
	assert.True(t, ok)
	assert.Equal(t, "super_admin", role)
	assert.JSONEq(t, `{"id":"u-1","email":"admin@hustlex.ng"}`, string(s.User()))
}

func TestSession_MissingFieldsAreAbsent(t *testing.T) {
	s, err := New([]byte(`{"role":null}`))
	require.NoError(t, err)

	_, ok := s.Role()
	assert.False(t, ok)
	assert.Nil(t, s.User())
	assert.Empty(t, s.AccessToken())
	_, ok = s.ExpiresAt()
	assert.False(t, ok)
}

func TestSession_NonStringRoleKeepsJSON(t *testing.T) {
	s, err := New([]byte(`{"role":["admin","support"]}`))
	require.NoError(t, err)

	role, ok := s.Role()
	assert.True(t, ok)
	assert.Equal(t, `["admin","support"]`, role)
}

func TestSession_TokenAliases(t *testing.T) {
	s, err := New([]byte(`{"token":"t-1","refreshToken":"r-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "t-1", s.AccessToken())
	assert.Equal(t, "r-1", s.RefreshToken())

	s, err = New([]byte(`{"access_token":"a-1","token":"t-1","refresh_token":"r-2"}`))
	require.NoError(t, err)
	assert.Equal(t, "a-1", s.AccessToken())
	assert.Equal(t, "r-2", s.RefreshToken())
}

func TestSession_ExpiresAtFromPayload(t *testing.T) {
	s, err := New([]byte(`{"expires_at":"2026-10-20T10:00:00Z"}`))
	require.NoError(t, err)

	exp, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC), exp.UTC())
}

func TestSession_ExpiresAtFromTokenClaim(t *testing.T) {
	want := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": want.Unix(),
	}).SignedString([]byte("not-the-real-key"))
	require.NoError(t, err)

	s, err := New([]byte(`{"access_token":"` + tok + `"}`))
	require.NoError(t, err)

	exp, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, want.Equal(exp), "want %v got %v", want, exp)
}

func TestSession_ExpiresAtOpaqueToken(t *testing.T) {
	s, err := New([]byte(`{"access_token":"opaque"}`))
	require.NoError(t, err)

	_, ok := s.ExpiresAt()
	assert.False(t, ok)
}

func TestSession_RawIsCopied(t *testing.T) {
	raw := []byte(`{"role":"admin"}`)
	s, err := New(raw)
	require.NoError(t, err)

	raw[2] = 'X'
	assert.JSONEq(t, `{"role":"admin"}`, string(s.Raw))
}
