// Package tags provides the hashtag library commands.
package tags

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/internal/matcher"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// NewCommand creates the tags command with its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		GroupID: "management",
		Short:   "Manage the hashtag library",
		Long: `The hashtag library is the persisted list of hashtags offered when
tagging articles. It is merged with every hashtag found in the catalog.`,
		Aliases: []string{"hashtags"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newAddCommand(app))
	cmd.AddCommand(newRemoveCommand(app))
	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern]",
		Short: "List known hashtags, optionally matching a glob or regex",
		Example: `  docsync tags list
  docsync tags list 'pallet*'
  docsync tags list '^(cobot|vision)$'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pattern string
			if len(args) == 1 {
				pattern = args[0]
			}
			m, err := matcher.New(matcher.Auto, pattern)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}
			return output.Tags(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), m.MatchAll(client.Snapshot().Hashtags...))
		},
	}
}

func newAddCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "add <tag>",
		Short:   "Add a hashtag to the library",
		Example: `  docsync tags add palletizing    # stored as #palletizing`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}
			tags, err := client.AddLibraryTag(ctx, args[0])
			if err != nil {
				return err
			}
			return write(cmd, app, alerts.Successf("Added %s", vocabulary.NormalizeTag(args[0])), len(tags))
		},
	}
}

func newRemoveCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <tag>",
		Short:   "Remove a hashtag from the library",
		Long:    `Remove drops a hashtag from the library. A hashtag still used by an article reappears on the next refresh.`,
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			client, err := appcontext.Refreshed(ctx, app)
			if err != nil {
				return err
			}
			tags, err := client.RemoveLibraryTag(ctx, args[0])
			if err != nil {
				return err
			}
			return write(cmd, app, alerts.Successf("Removed %s", vocabulary.NormalizeTag(args[0])), len(tags))
		},
	}
}

func write(cmd *cobra.Command, app appcontext.Interface, a *alerts.Alert, total int) error {
	a = a.WithDetails(pluralTags(total))
	return alerts.NewFormatWriter(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat())).WriteAlert(a)
}

func pluralTags(n int) string {
	if n == 1 {
		return "1 hashtag in library"
	}
	return fmt.Sprintf("%d hashtags in library", n)
}
