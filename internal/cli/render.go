package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hustlex/admin-gateway/internal/api/handlers"
	"github.com/hustlex/admin-gateway/internal/domain"
	"github.com/hustlex/admin-gateway/internal/graph"
)

// tagColors maps the dashboard's tag colour names onto ANSI colours.
var tagColors = map[string]lipgloss.Color{
	"green":    lipgloss.Color("2"),
	"lime":     lipgloss.Color("10"),
	"red":      lipgloss.Color("1"),
	"volcano":  lipgloss.Color("9"),
	"orange":   lipgloss.Color("208"),
	"gold":     lipgloss.Color("3"),
	"blue":     lipgloss.Color("4"),
	"geekblue": lipgloss.Color("12"),
	"cyan":     lipgloss.Color("6"),
	"purple":   lipgloss.Color("5"),
	"magenta":  lipgloss.Color("13"),
}

// tag renders label in the named colour. Writers that are not terminals get
// the plain label.
func tag(w io.Writer, color, label string) string {
	if label == "" {
		return ""
	}
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	if c, ok := tagColors[color]; ok {
		style = style.Foreground(c)
	}
	return style.Render(label)
}

// headline is the one-line description of a record, built from its typed
// view model.
func headline(resource string, rec graph.Record) string {
	switch resource {
	case "users":
		if u, err := graph.DecodeRecord[domain.User](rec); err == nil {
			if name := u.Profile.FullName(); name != "" {
				return name + " <" + u.Email + ">"
			}
			return u.Email
		}
	case "services":
		if s, err := graph.DecodeRecord[domain.Service](rec); err == nil {
			if s.Category != nil && s.Category.Name != "" {
				return s.Title + " (" + s.Category.Name + ")"
			}
			return s.Title
		}
	case "bookings":
		if b, err := graph.DecodeRecord[domain.Booking](rec); err == nil {
			if b.Service != nil && b.Service.Title != "" {
				return b.Reference + " " + b.Service.Title
			}
			return b.Reference
		}
	case "transactions":
		if t, err := graph.DecodeRecord[domain.Transaction](rec); err == nil {
			return t.Reference
		}
	case "remittances":
		if r, err := graph.DecodeRecord[domain.Remittance](rec); err == nil {
			if r.Beneficiary != nil {
				name := (&domain.Profile{FirstName: r.Beneficiary.FirstName, LastName: r.Beneficiary.LastName}).FullName()
				if name != "" {
					return r.Reference + " to " + name
				}
			}
			return r.Reference
		}
	case "beneficiaries":
		if b, err := graph.DecodeRecord[domain.Beneficiary](rec); err == nil {
			return strings.Join(strings.Fields(b.FirstName+" "+b.MiddleName+" "+b.LastName), " ")
		}
	case "savings_circles":
		if c, err := graph.DecodeRecord[domain.SavingsCircle](rec); err == nil {
			return c.Name
		}
	case "notifications":
		if n, err := graph.DecodeRecord[domain.Notification](rec); err == nil {
			return n.Title
		}
	}
	for _, k := range []string{"title", "name", "reference", "email"} {
		if s := str(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

func printRecord(cmd *cobra.Command, res domain.Resource, rec graph.Record) error {
	out := cmd.OutOrStdout()
	view := handlers.BuildView(res.Name, rec)

	fmt.Fprintf(out, "%s / %s\n", res.Label, str(rec["id"]))
	if h := headline(res.Name, rec); h != "" {
		fmt.Fprintf(out, "  %s\n", h)
	}
	if view.StatusLabel != "" {
		fmt.Fprintf(out, "status:   %s\n", tag(out, view.StatusColor, view.StatusLabel))
	}
	if typ := str(rec["type"]); typ != "" {
		fmt.Fprintf(out, "type:     %s\n", tag(out, view.TypeColor, domain.StatusLabel(typ)))
	}
	if view.Amount != "" {
		fmt.Fprintf(out, "amount:   %s\n", view.Amount)
	}
	if view.RemittanceStep != nil {
		steps := domain.RemittanceSteps()
		if step := *view.RemittanceStep; step >= 0 {
			fmt.Fprintf(out, "progress: step %d of %d (%s)\n", step+1, len(steps), steps[step])
		} else {
			fmt.Fprintln(out, "progress: stopped")
		}
	}
	if len(view.Dates) > 0 {
		fmt.Fprintln(out, "dates:")
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, field := range slices.Sorted(maps.Keys(view.Dates)) {
			fmt.Fprintf(tw, "  %s\t%s\n", field, view.Dates[field])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", raw)
	return nil
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
