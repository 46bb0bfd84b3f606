// Package cli is the hxadmin operator command line. It drives the same auth,
// graph and live packages as the gateway with a session kept on disk.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hustlex/admin-gateway/internal/audit"
	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/config"
	"github.com/hustlex/admin-gateway/internal/downstream"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/live"
	"github.com/hustlex/admin-gateway/internal/logger"
	"github.com/hustlex/admin-gateway/internal/session"
	"github.com/hustlex/admin-gateway/middleware"
)

var (
	ErrNotLoggedIn = errors.New("not logged in, run `hxadmin login` first")
	ErrLoggedOut   = errors.New("the data service rejected the session; you have been logged out, run `hxadmin login` again")
)

// App holds what every command needs. Store is the single on-disk session.
type App struct {
	Gateway *auth.Gateway
	Data    *graph.Client
	Live    live.Channel
	Store   session.Store
}

func NewApp(cfg *config.Config) *App {
	httpClient := downstream.NewClient(downstream.ClientConfig{
		ReadTimeout:  cfg.DownstreamReadTimeout,
		WriteTimeout: cfg.DownstreamWriteTimeout,
	})
	return &App{
		Gateway: auth.NewGateway(httpClient, cfg.APIURL, audit.New(logger.Log)),
		Data:    graph.NewClient(httpClient, cfg.GraphQLURL, graph.NewAuthorizer(cfg.GraphAuthMode, cfg.AdminSecret)),
		Live:    live.Unsupported{URL: cfg.WSURL},
		Store:   session.NewFileStore(cfg.SessionDir, session.DefaultKey),
	}
}

// run opens a session context for one command invocation and closes it after.
func (a *App) run(cmd *cobra.Command, fn func(ctx context.Context, sess *session.Manager) error) error {
	ctx := middleware.WithRequestID(cmd.Context(), uuid.NewString())
	sess := session.NewManager(a.Store)
	defer sess.Close()
	return fn(ctx, sess)
}

// requireLogin mirrors the gateway's RequireSession for data commands.
func (a *App) requireLogin(ctx context.Context, sess *session.Manager) error {
	if !a.Gateway.Check(ctx, sess).Authenticated {
		return ErrNotLoggedIn
	}
	return nil
}

// dataError routes a data-layer failure through the auth error hook.
func (a *App) dataError(ctx context.Context, sess *session.Manager, err error) error {
	out := a.Gateway.OnError(ctx, sess, err)
	if out.Logout {
		return ErrLoggedOut
	}
	var gqlErr *graph.Error
	if errors.As(out.Err, &gqlErr) {
		return fmt.Errorf("graph error (%s): %s", gqlErr.Code(), gqlErr.Message())
	}
	return out.Err
}
