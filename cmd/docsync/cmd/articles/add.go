package articles

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/cmdutil"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/conflict"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// NewAddCommand creates the add command.
func NewAddCommand(app appcontext.Interface) *cobra.Command {
	var (
		summarize bool
		check     bool
	)

	cmd := &cobra.Command{
		Use:     "add",
		GroupID: "core",
		Short:   "Add an article to the remote catalog",
		Long: `Add creates a new row in the remote catalog.

The article starts from a blank draft with the first built-in main
category. Titles, English links and English slugs must be unique.`,
		Example: `  docsync add --title "Palletizing Basics" --link-en https://example.com/p \
      --main-category "ADVANCED FEATURES" --sub-category "TM palletizing"
  docsync add --title "Vision Setup" --check      # Report duplicates without writing
  docsync add --title "X" --link-en https://x --summarize`,
		Args: cobra.NoArgs,
	}
	fields := cmdutil.AddArticleFlags(cmd)
	cmd.Flags().BoolVar(&summarize, "summarize", false, "Draft an empty summary from the English link")
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether the article would duplicate an existing one")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		client, err := appcontext.Refreshed(ctx, app)
		if err != nil {
			return err
		}
		snap := client.Snapshot()

		rec := vocabulary.Draft(snap.Columns, snap.Headers)
		if err := fields.Apply(&rec, snap.Columns); err != nil {
			return err
		}
		if snap.Columns.Value(&rec, articles.Title) == "" {
			return errors.NewValidationError(snap.Columns.Name(articles.Title), "", "is required")
		}

		if check {
			if c, found := client.Conflict(rec, ""); found {
				return c.Err()
			}
			return report(cmd, app, alerts.NewSuccess("No conflicting article"))
		}

		if summarize {
			rec = client.AutoSummary(ctx, rec)
		}

		if err := client.Create(ctx, rec); err != nil {
			return err
		}

		// The stored record is the one now holding the candidate's title.
		after := client.Snapshot()
		if c, found := conflict.Find(rec, after.Records, after.Columns, ""); found {
			return report(cmd, app, alerts.Successf("Created article %s", c.Existing.IdentityKey))
		}
		return report(cmd, app, alerts.NewSuccess("Created article").
			WithDetails("it is not in the refreshed catalog yet"))
	}

	return cmd
}
