package catalog

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/output"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(app appcontext.Interface) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "suggest [snippet...]",
		GroupID: "core",
		Short:   "Propose title, categories and hashtags for an article snippet",
		Long: `Suggest asks the configured model for article metadata, choosing
categories from the catalog's current vocabulary. The snippet comes from
the arguments, from --file, or from standard input when the only argument
is "-".

Requires a Gemini API key (GEMINI_API_KEY).`,
		Example: `  docsync suggest "TMflow 2.0 adds a palletizing wizard..."
  docsync suggest --file draft.txt -o yaml
  pbpaste | docsync suggest -`,
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the snippet from a file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		snippet, err := readSnippet(cmd, file, args)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		client, err := appcontext.Refreshed(ctx, app)
		if err != nil {
			return err
		}

		s := client.Suggest(ctx, snippet)
		if s == nil {
			return report(cmd, app, alerts.NewWarning("No suggestion available").
				WithDetails("check that a Gemini API key is configured"))
		}
		return output.Suggestion(cmd.OutOrStdout(), formatOf(app), s)
	}

	return cmd
}

// readSnippet collects the snippet and bounds its length.
func readSnippet(cmd *cobra.Command, file string, args []string) (string, error) {
	var snippet string
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", errors.WrapIO("read", file, err)
		}
		snippet = string(b)
	case len(args) == 1 && args[0] == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.WrapIO("read", "stdin", err)
		}
		snippet = string(b)
	default:
		snippet = strings.Join(args, " ")
	}

	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return "", errors.NewValidationError("snippet", "", "is required")
	}
	if r := []rune(snippet); len(r) > constants.MaxSummarySnippet {
		snippet = string(r[:constants.MaxSummarySnippet])
	}
	return snippet, nil
}
