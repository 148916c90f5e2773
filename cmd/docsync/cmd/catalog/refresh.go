package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/output"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		GroupID: "core",
		Short:   "Fetch the remote catalog and show the sync status",
		Aliases: []string{"sync"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := app.Client()
			if err != nil {
				return err
			}
			refreshErr := client.Refresh(ctx)

			if err := output.Status(cmd.OutOrStdout(), formatOf(app), client.Status()); err != nil {
				return err
			}
			return refreshErr
		},
	}
}
