package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/filter"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/constants"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(app appcontext.Interface) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:     "stats",
		GroupID: "core",
		Short:   "Show article counts per category and the most viewed articles",
		Long: `Stats counts the articles matching the filter per main category and
ranks them by views. Undated articles pass the date range.`,
		Example: `  docsync stats
  docsync stats --start 2024-01-01 --end 2024-03-31 --top 10`,
		Args: cobra.NoArgs,
	}
	filters := filter.AddFlags(cmd)
	cmd.Flags().IntVarP(&top, "top", "n", constants.DefaultTopN, "Number of most viewed articles")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		f, err := filters.Filter()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		client, err := appcontext.Refreshed(ctx, app)
		if err != nil {
			return err
		}
		return output.Stats(cmd.OutOrStdout(), formatOf(app), client.Stats(f, top), client.Snapshot().Columns)
	}

	return cmd
}
