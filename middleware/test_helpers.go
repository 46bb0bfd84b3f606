package middleware

import (
	"context"

	"github.com/hustlex/admin-gateway/internal/session"
)

// SetRequestIDForTest injects a request id without running the middleware.
func SetRequestIDForTest(ctx context.Context, id string) context.Context {
	return WithRequestID(ctx, id)
}

// SetSessionForTest binds a session manager and id without running BindSession.
func SetSessionForTest(ctx context.Context, sid string, m *session.Manager) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey{}, sid)
	return context.WithValue(ctx, sessionKey{}, m)
}
