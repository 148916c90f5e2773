package projection

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/constants"
)

// BOM marks the CSV as UTF-8 for spreadsheet tools.
const BOM = "\ufeff"

// CSV renders records as a BOM-prefixed, comma-delimited document with
// one column per header. Rows are separated by "\n" with no trailing
// newline.
func CSV(records []articles.Record, headers []string) string {
	var b strings.Builder
	_ = WriteCSV(&b, records, headers)
	return b.String()
}

// WriteCSV streams the CSV rendering to w.
func WriteCSV(w io.Writer, records []articles.Record, headers []string) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	if err := writeLine(w, headers); err != nil {
		return err
	}
	row := make([]string, len(headers))
	for i := range records {
		for j, h := range headers {
			row[j] = records[i].Text(h)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := writeLine(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, escapeField(f)); err != nil {
			return err
		}
	}
	return nil
}

// escapeField doubles embedded quotes and quotes fields that contain a
// comma, a quote or a line break.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Filename returns the export file name for a catalog on a given day.
func Filename(catalog string, day time.Time) string {
	if catalog == "" {
		catalog = constants.DefaultCatalogName
	}
	return fmt.Sprintf(constants.ExportFilenameFormat, catalog, day.Format(constants.DateFormat))
}
