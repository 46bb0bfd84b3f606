package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hustlex/admin-gateway/internal/session"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "req-abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "req-abc", seen)
	assert.Equal(t, "req-abc", rr.Header().Get(HeaderXRequestID))
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetRequestID(nil)) //nolint:staticcheck
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	h := RequestID(RequestLogger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/check", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"status":401`)
	assert.Contains(t, out, `"path":"/api/auth/check"`)
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestBindSession_ReusesValidCookie(t *testing.T) {
	mem := session.NewMemoryStore(0)
	sid := uuid.NewString()
	require.NoError(t, mem.Scope(sid).Save(context.Background(), mustSession(t, `{"role":"admin"}`)))

	var gotSID string
	var authed bool
	h := BindSession(mem.Scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSID = GetSessionID(r.Context())
		authed = GetSession(r.Context()).Authenticated(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, sid, gotSID)
	assert.True(t, authed)
}

func TestBindSession_FreshIDForMissingOrForgedCookie(t *testing.T) {
	mem := session.NewMemoryStore(0)

	for _, cookie := range []string{"", "../../etc/passwd"} {
		var gotSID string
		h := BindSession(mem.Scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSID = GetSessionID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		_, err := uuid.Parse(gotSID)
		assert.NoError(t, err)
		assert.NotEqual(t, cookie, gotSID)
		assert.Empty(t, rr.Result().Cookies(), "cookie must not be issued before login")
	}
}

func TestBindSession_ClosesManagerAfterRequest(t *testing.T) {
	var m *session.Manager
	h := BindSession(session.NewMemoryStore(0).Scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m = GetSession(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, m)
	_, err := m.Current(context.Background())
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestRequireSession(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	mem := session.NewMemoryStore(0)

	t.Run("absent session redirects to login", func(t *testing.T) {
		called = false
		req := httptest.NewRequest(http.MethodGet, "/api/resources/users", nil)
		ctx := SetSessionForTest(req.Context(), "sid-1", session.NewManager(mem.Scope("sid-1")))
		rr := httptest.NewRecorder()

		RequireSession(next).ServeHTTP(rr, req.WithContext(ctx))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":{"code":"unauthenticated","message":"login required"},"redirect_to":"/login"}`, rr.Body.String())
	})

	t.Run("present session passes", func(t *testing.T) {
		called = false
		require.NoError(t, mem.Scope("sid-2").Save(context.Background(), mustSession(t, `{"role":"admin"}`)))
		req := httptest.NewRequest(http.MethodGet, "/api/resources/users", nil)
		ctx := SetSessionForTest(req.Context(), "sid-2", session.NewManager(mem.Scope("sid-2")))
		rr := httptest.NewRecorder()

		RequireSession(next).ServeHTTP(rr, req.WithContext(ctx))

		assert.True(t, called)
	})

	t.Run("no manager bound", func(t *testing.T) {
		called = false
		rr := httptest.NewRecorder()
		RequireSession(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestSessionCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	rr := httptest.NewRecorder()
	SetSessionCookie(rr, req, "sid-1")
	c := rr.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, "sid-1", c[0].Value)
	assert.True(t, c[0].HttpOnly)

	rr = httptest.NewRecorder()
	ExpireSessionCookie(rr, req)
	c = rr.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, -1, c[0].MaxAge)
}

func mustSession(t *testing.T, raw string) *session.Session {
	t.Helper()
	s, err := session.New([]byte(raw))
	require.NoError(t, err)
	return s
}
