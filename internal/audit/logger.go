package audit

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hustlex/admin-gateway/middleware"
)

// Logger writes the admin authentication trail.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// LoginSuccess logs a successful admin login.
func (l *Logger) LoginSuccess(ctx context.Context, email, role, ip string) {
	l.log.Info().
		Str("action", "login_success").
		Str("email", maskEmail(email)).
		Str("role", role).
		Str("ip", ip).
		Str("request_id", middleware.GetRequestID(ctx)).
		Msg("Admin logged in")
}

// LoginFailed logs a rejected or failed login attempt.
func (l *Logger) LoginFailed(ctx context.Context, email, ip, reason string) {
	l.log.Warn().
		Str("action", "login_failed").
		Str("email", maskEmail(email)).
		Str("ip", ip).
		Str("reason", reason).
		Str("request_id", middleware.GetRequestID(ctx)).
		Msg("Admin login failed")
}

func (l *Logger) Logout(ctx context.Context, role string) {
	l.log.Info().
		Str("action", "logout").
		Str("role", role).
		Str("request_id", middleware.GetRequestID(ctx)).
		Msg("Admin logged out")
}

// ForcedLogout logs a session dropped because a downstream call was
// unauthorized.
func (l *Logger) ForcedLogout(ctx context.Context, reason string) {
	l.log.Warn().
		Str("action", "forced_logout").
		Str("reason", reason).
		Str("request_id", middleware.GetRequestID(ctx)).
		Msg("Admin session revoked by downstream")
}

// maskEmail keeps the first two characters and the domain.
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
