// Package catalog provides the commands that read the catalog as a whole:
// refresh, stats, categories, export and suggest.
package catalog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/constants"
)

// Commands returns every catalog command, wired to app.
func Commands(app appcontext.Interface) []*cobra.Command {
	return []*cobra.Command{
		NewRefreshCommand(app),
		NewStatsCommand(app),
		NewCategoriesCommand(app),
		NewExportCommand(app),
		NewSuggestCommand(app),
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), constants.CommandTimeout)
}

func formatOf(app appcontext.Interface) output.Format {
	return output.DetectFormat(app.OutputFormat())
}

func report(cmd *cobra.Command, app appcontext.Interface, a *alerts.Alert) error {
	return alerts.NewFormatWriter(cmd.OutOrStdout(), formatOf(app)).WriteAlert(a)
}
