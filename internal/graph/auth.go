package graph

import (
	"context"
	"net/http"

	"github.com/hustlex/admin-gateway/internal/config"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/session"
)

const HeaderAdminSecret = "x-hasura-admin-secret"

// Authorizer sets the credentials for one graph request.
type Authorizer interface {
	Authorize(ctx context.Context, sess *session.Manager, h http.Header) error
}

// AdminSecret authenticates every request with the shared admin secret,
// whichever admin is logged in.
type AdminSecret string

func (s AdminSecret) Authorize(_ context.Context, _ *session.Manager, h http.Header) error {
	h.Set(HeaderAdminSecret, string(s))
	return nil
}

// SessionToken forwards the logged-in admin's access token so the graph
// service authorizes the actual user. A missing token is unauthorized.
type SessionToken struct{}

func (SessionToken) Authorize(ctx context.Context, sess *session.Manager, h http.Header) error {
	if sess == nil {
		return downstream.ErrUnauthorized
	}
	s, err := sess.Current(ctx)
	if err != nil {
		return err
	}
	if s == nil || s.AccessToken() == "" {
		return downstream.ErrUnauthorized
	}
	h.Set("Authorization", "Bearer "+s.AccessToken())
	return nil
}

// NewAuthorizer picks the Authorizer for a GRAPH_AUTH_MODE value.
func NewAuthorizer(mode, adminSecret string) Authorizer {
	if mode == config.GraphAuthSessionToken {
		return SessionToken{}
	}
	return AdminSecret(adminSecret)
}
