package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/hustlex/admin-gateway/internal/session"
)

const (
	SessionCookie = "hx_session"
	LoginPath     = "/login"
)

type (
	sessionKey   struct{}
	sessionIDKey struct{}
)

// StoreResolver returns the single-session store for a browser session id.
type StoreResolver func(sid string) session.Store

// BindSession attaches a session.Manager for the caller's session id to the
// request context and closes it when the request ends. Callers without a
// cookie get a fresh id; the cookie is only issued once a login succeeds.
func BindSession(resolve StoreResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
			}

			m := session.NewManager(resolve(sid))
			defer m.Close()

			ctx := context.WithValue(r.Context(), sessionIDKey{}, sid)
			ctx = context.WithValue(ctx, sessionKey{}, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a stored session, pointing the
// caller at the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := GetSession(r.Context())
		if m == nil || !m.Authenticated(r.Context()) {
			WriteLoginRedirect(w, r, "unauthenticated", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteLoginRedirect answers 401 with the login redirect target.
func WriteLoginRedirect(w http.ResponseWriter, r *http.Request, code, message string) {
	type errBody struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	}
	loginRedirectsTotal.WithLabelValues(code).Inc()
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, struct {
		Error      errBody `json:"error"`
		RedirectTo string  `json:"redirect_to"`
	}{
		Error:      errBody{Code: code, Message: message, RequestID: GetRequestID(r.Context())},
		RedirectTo: LoginPath,
	})
}

func GetSession(ctx context.Context) *session.Manager {
	m, _ := ctx.Value(sessionKey{}).(*session.Manager)
	return m
}

func GetSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey{}).(string)
	return sid
}

// SetSessionCookie issues the browser session cookie.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExpireSessionCookie tells the browser to drop the session cookie.
func ExpireSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, ExpiredSessionCookie(r.TLS != nil))
}

// ExpiredSessionCookie is the cookie that clears the browser session.
func ExpiredSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
