package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/cmd/docsync/cmd/articles"
	"github.com/agentstation/docsync/cmd/docsync/cmd/catalog"
	"github.com/agentstation/docsync/cmd/docsync/cmd/serve"
	"github.com/agentstation/docsync/cmd/docsync/cmd/tags"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(articles.Commands(a)...)
	rootCmd.AddCommand(catalog.Commands(a)...)

	// Management commands
	rootCmd.AddCommand(tags.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("docsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
