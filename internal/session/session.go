// Package session persists the admin login payload and hands it to the auth and
// data layers through an explicit Manager.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKey is the storage key the login payload lives under.
const DefaultKey = "auth"

var (
	ErrClosed           = errors.New("session: manager closed")
	ErrStoreUnavailable = errors.New("session: store not configured")
	ErrEmptyPayload     = errors.New("session: empty payload")
)

// Session is the login payload exactly as the auth endpoint returned it.
// Accessors are lenient: a missing or oddly typed field reads as absent.
type Session struct {
	Raw []byte

	fields map[string]json.RawMessage
}

// New wraps a raw payload. The payload must be a JSON object.
func New(raw []byte) (*Session, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, ErrEmptyPayload
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &Session{Raw: buf, fields: fields}, nil
}

// Role returns the role field. Non-string roles are returned as their JSON text.
func (s *Session) Role() (string, bool) {
	raw, ok := s.field("role")
	if !ok {
		return "", false
	}
	var role string
	if err := json.Unmarshal(raw, &role); err == nil {
		return role, true
	}
	return string(raw), true
}

// User returns the user field, or nil.
func (s *Session) User() json.RawMessage {
	raw, ok := s.field("user")
	if !ok {
		return nil
	}
	return raw
}

func (s *Session) AccessToken() string {
	for _, k := range []string{"access_token", "token", "accessToken"} {
		if v := s.stringField(k); v != "" {
			return v
		}
	}
	return ""
}

func (s *Session) RefreshToken() string {
	if v := s.stringField("refresh_token"); v != "" {
		return v
	}
	return s.stringField("refreshToken")
}

// ExpiresAt reports when the access token stops being valid. It prefers the
// payload's expires_at and falls back to the token's exp claim. The token is
// not verified; the gateway trusts its local copy.
func (s *Session) ExpiresAt() (time.Time, bool) {
	if v := s.stringField("expires_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}

	tok := s.AccessToken()
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Session) field(name string) (json.RawMessage, bool) {
	if s == nil || s.fields == nil {
		return nil, false
	}
	raw, ok := s.fields[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func (s *Session) stringField(name string) string {
	raw, ok := s.field(name)
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}
