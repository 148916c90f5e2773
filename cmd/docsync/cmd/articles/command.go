// Package articles provides the commands that list and edit catalog articles.
package articles

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/constants"
)

// Commands returns every article command, wired to app.
func Commands(app appcontext.Interface) []*cobra.Command {
	return []*cobra.Command{
		NewListCommand(app),
		NewAddCommand(app),
		NewUpdateCommand(app),
		NewDeleteCommand(app),
		NewToggleLinkedInCommand(app),
	}
}

// commandContext bounds a one-shot command.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), constants.CommandTimeout)
}

func formatOf(app appcontext.Interface) output.Format {
	return output.DetectFormat(app.OutputFormat())
}

func report(cmd *cobra.Command, app appcontext.Interface, a *alerts.Alert) error {
	return alerts.NewFormatWriter(cmd.OutOrStdout(), formatOf(app)).WriteAlert(a)
}
