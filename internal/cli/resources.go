package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hustlex/admin-gateway/internal/api/handlers"
	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/graph"
	"github.com/hustlex/admin-gateway/internal/session"
)

func resolve(name string, c domain.Capability) (domain.Resource, error) {
	res, ok := domain.LookupResource(name)
	if !ok {
		return domain.Resource{}, fmt.Errorf("unknown resource %q (see `hxadmin resources`)", name)
	}
	if !res.Can(c) {
		return domain.Resource{}, fmt.Errorf("%s does not support %s", res.Name, c)
	}
	return res, nil
}

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the dashboard resources and what each supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLABEL\tCAPABILITIES")
			for _, r := range domain.Resources() {
				caps := make([]string, len(r.Capabilities))
				for i, c := range r.Capabilities {
					caps[i] = string(c)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Label, strings.Join(caps, ","))
			}
			return tw.Flush()
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var (
		limit, offset int
		sortBy        string
		filters       []string
	)

	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List records of a resource",
		Long: `List records of a resource.

Filters take the form field=value or field[op]=value where op is one of
eq, neq, lt, lte, gt, gte, in, ilike. Values of an "in" filter are comma
separated. --sort takes a comma list; prefix a field with - to sort
descending, e.g. --sort=-created_at.`,
		Example: `  hxadmin list users --filter status=active --sort=-created_at
  hxadmin list remittances --filter 'status[in]=pending,processing' --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolve(args[0], domain.CapList)
			if err != nil {
				return err
			}
			params, err := listParams(limit, offset, sortBy, filters)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				if err := app.requireLogin(ctx, sess); err != nil {
					return err
				}
				page, err := app.Data.List(ctx, sess, res.Name, params)
				if err != nil {
					return app.dataError(ctx, sess, err)
				}
				return printList(cmd, res, page)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of records to skip")
	cmd.Flags().StringVar(&sortBy, "sort", "", "comma separated sort fields, - for descending")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "field[op]=value, repeatable")
	return cmd
}

// listParams reuses the gateway's query-string parser so both surfaces accept
// the same filter grammar.
func listParams(limit, offset int, sortBy string, filters []string) (graph.ListParams, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if sortBy != "" {
		q.Set("sort", sortBy)
	}
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return graph.ListParams{}, fmt.Errorf("filter %q must look like field=value", f)
		}
		q.Add("filter."+strings.TrimSpace(key), value)
	}
	return handlers.ParseListParams(q)
}

func printList(cmd *cobra.Command, res domain.Resource, page *graph.Page) error {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tAMOUNT")
	for _, rec := range page.Records {
		view := handlers.BuildView(res.Name, rec)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			str(rec["id"]),
			orDash(headline(res.Name, rec)),
			orDash(tag(out, view.StatusColor, view.StatusLabel)),
			orDash(view.Amount),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d of %d %s\n", len(page.Records), page.Total, strings.ToLower(res.Label))
	return nil
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolve(args[0], domain.CapShow)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				if err := app.requireLogin(ctx, sess); err != nil {
					return err
				}
				rec, err := app.Data.Get(ctx, sess, res.Name, args[1])
				if err != nil {
					return app.dataError(ctx, sess, err)
				}
				return printRecord(cmd, res, rec)
			})
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <resource> <id> field=value...",
		Short: "Edit fields of one record",
		Example: `  hxadmin update users 0b5c... status=suspended
  hxadmin update services 4f2e... base_price=15000 status=active`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolve(args[0], domain.CapEdit)
			if err != nil {
				return err
			}
			values := make(map[string]any, len(args)-2)
			for _, pair := range args[2:] {
				k, v, ok := strings.Cut(pair, "=")
				if !ok || k == "" {
					return fmt.Errorf("%q must look like field=value", pair)
				}
				values[k] = v
			}
			clean, err := res.ValidateEdit(values)
			if err != nil {
				return err
			}

			return app.run(cmd, func(ctx context.Context, sess *session.Manager) error {
				if err := app.requireLogin(ctx, sess); err != nil {
					return err
				}
				rec, err := app.Data.Update(ctx, sess, res.Name, args[1], clean)
				if err != nil {
					return app.dataError(ctx, sess, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n\n", res.Name, args[1])
				return printRecord(cmd, res, rec)
			})
		},
	}
}
