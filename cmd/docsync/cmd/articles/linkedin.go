package articles

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/pkg/articles"
)

// NewToggleLinkedInCommand creates the toggle-linkedin command.
func NewToggleLinkedInCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle-linkedin <identity>",
		GroupID: "core",
		Short:   "Flip the LinkedIn-posted flag of an article",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}

			identity := args[0]
			if err := client.ToggleLinkedIn(ctx, identity); err != nil {
				return err
			}

			snap := client.Snapshot()
			if rec, ok := snap.Find(identity); ok {
				return report(cmd, app, alerts.Successf("LinkedIn for %s is now %s",
					identity, snap.Columns.Value(&rec, articles.LinkedIn)))
			}
			return report(cmd, app, alerts.Successf("Toggled LinkedIn for %s", identity))
		},
	}
}
