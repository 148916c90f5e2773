package articles

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/cmdutil"
	"github.com/agentstation/docsync/pkg/errors"
)

// NewUpdateCommand creates the update command.
func NewUpdateCommand(app appcontext.Interface) *cobra.Command {
	var summarize bool

	cmd := &cobra.Command{
		Use:     "update <identity>",
		GroupID: "core",
		Short:   "Update columns of an existing article",
		Long: `Update rewrites the given columns of one article. Columns without a
flag keep their stored value. Changing the main category clears the sub
category unless --sub-category is also given.`,
		Example: `  docsync update row-12 --linkedin yes
  docsync update row-12 --main-category FUNDAMENTALS --sub-category "Communication protocol"
  docsync update row-12 --set "Internal Notes=needs screenshots"`,
		Args: cobra.ExactArgs(1),
	}
	fields := cmdutil.AddArticleFlags(cmd)
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Draft the summary from the English link when it is empty")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		identity := args[0]
		if !fields.Changed() && !summarize {
			return errors.NewValidationError("", nil, "nothing to update: pass at least one column flag")
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		client, err := appcontext.Refreshed(ctx, app)
		if err != nil {
			return err
		}
		snap := client.Snapshot()

		stored, ok := snap.Find(identity)
		if !ok {
			return errors.NewNotFoundError("article", identity)
		}
		rec := stored.Clone()
		if err := fields.Apply(&rec, snap.Columns); err != nil {
			return err
		}
		if summarize {
			rec = client.AutoSummary(ctx, rec)
		}

		if err := client.Update(ctx, rec); err != nil {
			return err
		}
		return report(cmd, app, alerts.Successf("Updated article %s", identity))
	}

	return cmd
}
