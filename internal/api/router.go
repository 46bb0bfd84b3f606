package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hustlex/admin-gateway/internal/api/handlers"
	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/live"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/internal/metrics"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/internal/tracing"
	"github.com/hustlex/admin-gateway/middleware"
)

// Deps is everything the router wires together.
type Deps struct {
	Gateway    *auth.Gateway
	Data       handlers.DataSource
	GraphProxy http.Handler
	Live       live.Channel
	Sessions   middleware.StoreResolver
	Readiness  []handlers.ReadinessChecker
	Tracing    bool
	// RateLimit wraps the session-guarded routes; nil leaves them unlimited.
	RateLimit  func(http.Handler) http.Handler
}

// Scoper is a session backend holding one payload per key.
type Scoper interface {
	Scope(key string) session.Store
}

// ScopedResolver stores each browser session under "auth:<session id>".
func ScopedResolver(s Scoper) middleware.StoreResolver {
	return func(sid string) session.Store {
		return s.Scope(session.DefaultKey + ":" + sid)
	}
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	if d.Tracing {
		r.Use(middleware.Tracing(tracing.ServiceName))
	}

	ready := handlers.NewReadinessHandler(d.Readiness...)
	r.Get("/api/healthz", ready.Healthz)
	r.Get("/api/readyz", ready.Readyz)
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Gateway, d.Sessions)
	resH := handlers.NewResourceHandler(d.Data, d.Gateway)
	liveH := handlers.NewLiveHandler(d.Live)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BindSession(d.Sessions))

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", authH.Login)
			r.Post("/logout", authH.Logout)
			r.Get("/check", authH.Check)
			r.Get("/permissions", authH.Permissions)
			r.Get("/identity", authH.Identity)
		})
		r.Get("/api/live", liveH.Status)

		// Everything below needs a stored session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			if d.RateLimit != nil {
				r.Use(d.RateLimit)
			}

			r.Get("/api/resources", resH.Index)
			r.Route("/api/resources/{resource}", func(r chi.Router) {
				r.Get("/", resH.List)
				r.Post("/", resH.Create)
				r.Get("/{id}", resH.Get)
				r.Patch("/{id}", resH.Update)
				r.Delete("/{id}", resH.Delete)
			})
			if d.GraphProxy != nil {
				r.Method(http.MethodPost, "/api/graphql", d.GraphProxy)
			}
		})
	})

	return r
}
