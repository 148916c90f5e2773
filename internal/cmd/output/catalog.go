package output

import (
	"fmt"
	"io"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/projection"
	"github.com/agentstation/docsync/pkg/summarize"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Articles writes a record listing. Structured formats get the records
// themselves; tables get one row per record.
func Articles(w io.Writer, format Format, records []articles.Record, cols articles.Columns) error {
	if records == nil {
		records = []articles.Record{}
	}
	var data any = records
	if format.IsTable() {
		data = table.ArticlesToTableData(records, cols, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// Article writes a single record.
func Article(w io.Writer, format Format, rec articles.Record) error {
	var data any = rec
	if format.IsTable() {
		data = table.RecordToTableData(rec)
	}
	return NewFormatter(format).Format(w, data)
}

// Stats writes the overview figures. A table rendering prints the totals
// followed by the category and most-viewed tables.
func Stats(w io.Writer, format Format, stats projection.Stats, cols articles.Columns) error {
	if !format.IsTable() {
		return NewFormatter(format).Format(w, stats)
	}

	if _, err := fmt.Fprintf(w, "Articles: %d\nTotal views: %d\n", stats.Total, stats.TotalViews); err != nil {
		return err
	}
	if stats.Range.IsSet() {
		if _, err := fmt.Fprintf(w, "Range: %s to %s\n", orOpen(stats.Range.Start), orOpen(stats.Range.End)); err != nil {
			return err
		}
	}

	f := &TableFormatter{}
	if _, err := fmt.Fprintln(w, "\nBy category"); err != nil {
		return err
	}
	if err := f.Format(w, table.CategoryCountsToTableData(stats.Categories)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "\nMost viewed"); err != nil {
		return err
	}
	return f.Format(w, table.TopToTableData(stats.Top, cols))
}

// Categories writes the category tree.
func Categories(w io.Writer, format Format, c *vocabulary.Categories) error {
	var data any = c
	if format.IsTable() {
		data = table.CategoriesToTableData(c)
	}
	return NewFormatter(format).Format(w, data)
}

// Tags writes a hashtag vocabulary.
func Tags(w io.Writer, format Format, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	var data any = tags
	if format.IsTable() {
		data = table.TagsToTableData(tags)
	}
	return NewFormatter(format).Format(w, data)
}

// Status writes the sync state.
func Status(w io.Writer, format Format, info docsync.StatusInfo) error {
	var data any = info
	if format.IsTable() {
		data = table.StatusToTableData(info)
	}
	return NewFormatter(format).Format(w, data)
}

// Suggestion writes proposed metadata.
func Suggestion(w io.Writer, format Format, s *summarize.Suggestion) error {
	var data any = s
	if format.IsTable() {
		data = table.SuggestionToTableData(s)
	}
	return NewFormatter(format).Format(w, data)
}

// Any writes data with the formatter for format.
func Any(w io.Writer, format Format, data any) error {
	return NewFormatter(format).Format(w, data)
}

func orOpen(s string) string {
	if s == "" {
		return "open"
	}
	return s
}
