package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the hxadmin command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "hxadmin",
		Short: "Operate the HustleX admin dashboard from a terminal",
		Long: `hxadmin signs in against the HustleX auth API and reads or edits
dashboard records through the graph service.

The login payload is kept in SESSION_DIR (default ~/.hxadmin) as auth.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newCheckCmd(app),
		newWhoamiCmd(app),
		newResourcesCmd(),
		newListCmd(app),
		newShowCmd(app),
		newUpdateCmd(app),
		newSubscribeCmd(app),
	)
	return root
}
