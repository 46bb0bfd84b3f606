package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/live"
	"github.com/hustlex/admin-gateway/internal/session"
)

func newSubscribeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <resource> [id...]",
		Short: "Stream live changes to a resource",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolve(args[0], domain.CapList)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				if err := app.requireLogin(ctx, sess); err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				unsubscribe, err := app.Live.Subscribe(ctx, live.Subscription{Resource: res.Name, IDs: args[1:]}, func(ev live.Event) {
					fmt.Fprintf(out, "%s %s %v\n", ev.Resource, ev.Type, ev.Payload["id"])
				})
				if unsubscribe != nil {
					defer unsubscribe()
				}
				if errors.Is(err, live.ErrNotImplemented) {
					return fmt.Errorf("live updates for %s are not available yet", res.Name)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Watching %s, press Ctrl-C to stop\n", res.Name)
				<-ctx.Done()
				return nil
			})
		},
	}
}
