package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hustlex/admin-gateway/internal/auth"
	"github.com/hustlex/admin-gateway/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an admin",
		Long: `Sign in with an admin email and password. The password may also come
from HXADMIN_PASSWORD so it stays out of shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds.Email = strings.TrimSpace(creds.Email)
			if creds.Password == "" {
				creds.Password = os.Getenv("HXADMIN_PASSWORD")
			}
			if err := creds.Validate(); err != nil {
				var verr *auth.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("invalid credentials: %s", strings.Join(verr.Problems, "; "))
				}
				return err
			}

			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				res := app.Gateway.Login(ctx, sess, creds)
				if !res.Success {
					return fmt.Errorf("%s: %s", res.Error.Name, res.Error.Message)
				}
				role, _ := app.Gateway.Permissions(ctx, sess)
				if role == "" {
					role = "unknown role"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", creds.Email, role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "admin email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "admin password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				app.Gateway.Logout(ctx, sess)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				if !app.Gateway.Check(ctx, sess).Authenticated {
					return ErrNotLoggedIn
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Authenticated")
				return nil
			})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored role, identity and token expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				s, err := sess.Current(ctx)
				if err != nil || s == nil {
					return ErrNotLoggedIn
				}

				out := cmd.OutOrStdout()
				role, ok := app.Gateway.Permissions(ctx, sess)
				if !ok {
					role = "-"
				}
				fmt.Fprintf(out, "role:     %s\n", role)

				if user := app.Gateway.Identity(ctx, sess); user != nil {
					fmt.Fprintf(out, "identity: %s\n", user)
				} else {
					fmt.Fprintln(out, "identity: -")
				}

				if exp, ok := s.ExpiresAt(); ok {
					state := "valid"
					if time.Now().After(exp) {
						state = "expired"
					}
					fmt.Fprintf(out, "expires:  %s (%s)\n", exp.UTC().Format(time.RFC3339), state)
				} else {
					fmt.Fprintln(out, "expires:  unknown")
				}
				return nil
			})
		},
	}
}
