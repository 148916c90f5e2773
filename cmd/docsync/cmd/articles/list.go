package articles

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/filter"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/errors"
)

// NewListCommand creates the list command.
func NewListCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list [identity]",
		GroupID: "core",
		Short:   "List articles from the remote catalog",
		Aliases: []string{"ls"},
		Args:    cobra.MaximumNArgs(1),
		Example: `  docsync list                                   # All articles
  docsync list row-12                            # One article, every column
  docsync list -c "TM AI VISION" --linkedin no   # Vision articles not yet posted
  docsync list --start 2024-01-01 -o json        # Articles since January, as JSON`,
	}
	filters := filter.AddFlags(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Limit number of results")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
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
		snap := client.Snapshot()

		if len(args) == 1 {
			rec, ok := snap.Find(args[0])
			if !ok {
				return errors.NewNotFoundError("article", args[0])
			}
			return output.Article(cmd.OutOrStdout(), formatOf(app), rec)
		}

		records := client.Filter(f)
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		return output.Articles(cmd.OutOrStdout(), formatOf(app), records, snap.Columns)
	}

	return cmd
}
