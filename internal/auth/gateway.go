// Package auth exchanges admin credentials with the auth API and answers the
// route-guard questions (is there a session, what role, who) from the stored
// session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hustlex/admin-gateway/internal/audit"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/internal/metrics"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/middleware"
)

const (
	// LoginEndpoint is appended to the API base URL.
	LoginEndpoint = "/api/v1/auth/admin/login"

	HomePath  = "/"
	LoginPath = middleware.LoginPath

	ErrorName             = "Login Error"
	MessageInvalidLogin   = "Invalid email or password"
	MessageLoginCrashed   = "An error occurred during login"
	maxLoginResponseBytes = 1 << 20
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type LoginResult struct {
	Success    bool        `json:"success"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Error      *LoginError `json:"error,omitempty"`
}

type LogoutResult struct {
	Success    bool   `json:"success"`
	RedirectTo string `json:"redirect_to"`
}

type CheckResult struct {
	Authenticated bool   `json:"authenticated"`
	RedirectTo    string `json:"redirect_to,omitempty"`
}

// ErrorOutcome is the verdict of OnError. Logout is set when the session was
// dropped; otherwise Err carries the original error unchanged.
type ErrorOutcome struct {
	Logout     bool
	RedirectTo string
	Err        error
}

type Gateway struct {
	client  *downstream.Client
	baseURL string
	audit   *audit.Logger
}

func NewGateway(client *downstream.Client, baseURL string, auditLog *audit.Logger) *Gateway {
	if auditLog == nil {
		auditLog = audit.New(zerolog.Nop())
	}
	return &Gateway{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		audit:   auditLog,
	}
}

// Login posts the credentials and, on a 2xx answer, stores the body verbatim
// as the session. Every failure yields the same generic outcome and leaves the
// store untouched.
func (g *Gateway) Login(ctx context.Context, sess *session.Manager, creds Credentials) LoginResult {
	ip := ClientIP(ctx)
	fail := func(message, reason string, err error) LoginResult {
		ev := logger.Ctx(ctx).Warn().Str("reason", reason)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("admin login failed")
		g.audit.LoginFailed(ctx, creds.Email, ip, reason)
		if reason == "invalid_credentials" {
			metrics.RecordLogin("rejected")
		} else {
			metrics.RecordLogin("error")
		}
		return LoginResult{Error: &LoginError{Name: ErrorName, Message: message}}
	}

	if sess == nil {
		return fail(MessageLoginCrashed, "session_unavailable", session.ErrStoreUnavailable)
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return fail(MessageLoginCrashed, "encode_request", err)
	}

	resp, err := g.client.DoWithBody(ctx, http.MethodPost, g.baseURL+LoginEndpoint, bytes.NewReader(body),
		map[string]string{"Content-Type": "application/json", "Accept": "application/json"})
	if err != nil {
		return fail(MessageLoginCrashed, "transport_error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxLoginResponseBytes))
		return fail(MessageInvalidLogin, "invalid_credentials", nil)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginResponseBytes))
	if err != nil {
		return fail(MessageLoginCrashed, "read_response", err)
	}

	s, err := sess.Put(ctx, raw)
	if err != nil {
		return fail(MessageLoginCrashed, "store_session", err)
	}

	role, _ := s.Role()
	g.audit.LoginSuccess(ctx, creds.Email, role, ip)
	metrics.RecordLogin("success")
	return LoginResult{Success: true, RedirectTo: HomePath}
}

// Logout clears the session and always succeeds.
func (g *Gateway) Logout(ctx context.Context, sess *session.Manager) LogoutResult {
	if sess != nil {
		role, _ := g.Permissions(ctx, sess)
		if err := sess.Clear(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("failed to clear session on logout")
		}
		g.audit.Logout(ctx, role)
	}
	return LogoutResult{Success: true, RedirectTo: LoginPath}
}

// Check is the route guard: authenticated iff a session is stored.
func (g *Gateway) Check(ctx context.Context, sess *session.Manager) CheckResult {
	if sess != nil && sess.Authenticated(ctx) {
		return CheckResult{Authenticated: true}
	}
	return CheckResult{RedirectTo: LoginPath}
}

// Permissions returns the session's role field.
func (g *Gateway) Permissions(ctx context.Context, sess *session.Manager) (string, bool) {
	s := current(ctx, sess)
	if s == nil {
		return "", false
	}
	return s.Role()
}

// Identity returns the session's user field, or nil.
func (g *Gateway) Identity(ctx context.Context, sess *session.Manager) json.RawMessage {
	s := current(ctx, sess)
	if s == nil {
		return nil
	}
	return s.User()
}

// OnError drops the session when err says the caller is no longer authorized.
// Every other error is handed back untouched.
func (g *Gateway) OnError(ctx context.Context, sess *session.Manager, err error) ErrorOutcome {
	if err == nil {
		return ErrorOutcome{}
	}
	if !IsUnauthorized(err) {
		return ErrorOutcome{Err: err}
	}

	if sess != nil {
		if cerr := sess.Clear(ctx); cerr != nil {
			logger.Ctx(ctx).Warn().Err(cerr).Msg("failed to clear session after unauthorized response")
		}
	}
	g.audit.ForcedLogout(ctx, err.Error())
	metrics.RecordForcedLogout()
	return ErrorOutcome{Logout: true, RedirectTo: LoginPath}
}

// IsUnauthorized reports whether err is a 401-equivalent from any downstream.
func IsUnauthorized(err error) bool {
	return errors.Is(err, downstream.ErrUnauthorized)
}

func current(ctx context.Context, sess *session.Manager) *session.Session {
	if sess == nil {
		return nil
	}
	s, err := sess.Current(ctx)
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Msg("session read failed")
		return nil
	}
	return s
}

type clientIPKey struct{}

// WithClientIP records the caller's address for the audit trail.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
