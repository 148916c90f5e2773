package articles

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/pkg/articles"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <identity>",
		GroupID: "core",
		Short:   "Delete an article from the remote catalog",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		Example: `  docsync delete row-12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}

			identity := args[0]
			var title string
			if rec, ok := client.Snapshot().Find(identity); ok {
				title = rec.Lookup(articles.Title)
			}

			if err := client.Delete(ctx, identity); err != nil {
				return err
			}
			a := alerts.Successf("Deleted article %s", identity)
			if title != "" {
				a = a.WithDetails(title)
			}
			return report(cmd, app, a)
		},
	}
}
