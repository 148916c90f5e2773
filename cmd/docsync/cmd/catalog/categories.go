package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/output"
)

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		GroupID: "core",
		Short:   "List main and sub categories in use",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}
			return output.Categories(cmd.OutOrStdout(), formatOf(app), client.Snapshot().Categories)
		},
	}
}
