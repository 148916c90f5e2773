package catalog

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/alerts"
	"github.com/agentstation/docsync/internal/cmd/filter"
)

// NewExportCommand creates the export command.
func NewExportCommand(app appcontext.Interface) *cobra.Command {
	var (
		dir    string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "core",
		Short:   "Export filtered articles as CSV",
		Long: `Export writes the articles matching the filter to
<catalog>_Filtered_<YYYY-MM-DD>.csv with the catalog's own column order.
The file starts with a UTF-8 byte order mark so spreadsheets detect the
encoding.`,
		Example: `  docsync export --dir ~/Downloads
  docsync export -c FUNDAMENTALS --stdout > fundamentals.csv`,
		Args: cobra.NoArgs,
	}
	filters := filter.AddFlags(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the CSV file to")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the CSV to standard output instead of a file")

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

		if stdout {
			_, err := io.WriteString(cmd.OutOrStdout(), client.CSV(f))
			return err
		}

		path, err := client.Export(dir, f)
		if err != nil {
			return err
		}
		return report(cmd, app, alerts.Successf("Exported %d articles", len(client.Filter(f))).
			WithDetails(path))
	}

	return cmd
}
