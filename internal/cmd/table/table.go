// Package table converts catalog values into rows for tabular CLI output.
package table

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/projection"
	"github.com/agentstation/docsync/pkg/summarize"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// maxCell bounds free-text cells in narrow tables.
const maxCell = 48

// ArticlesToTableData converts records to table format. Wide output adds
// the sub category, author, hashtags and English link.
func ArticlesToTableData(records []articles.Record, cols articles.Columns, wide bool) Data {
	headers := []string{"Identity", "Title", "Category", "Date", "Views", "LinkedIn"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignCenter}
	if wide {
		headers = append(headers, "Sub Category", "Author", "Hashtags", "Link")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		rec := &records[i]
		title := cols.Value(rec, articles.Title)
		if !wide {
			title = Truncate(title, maxCell)
		}
		row := []string{
			rec.IdentityKey,
			title,
			dash(projection.Category(rec, cols)),
			dash(rec.DisplayDate),
			strconv.Itoa(rec.Views),
			dash(cols.Value(rec, articles.LinkedIn)),
		}
		if wide {
			row = append(row,
				dash(cols.Value(rec, articles.SubCategory)),
				dash(cols.Value(rec, articles.Author)),
				dash(cols.Value(rec, articles.Hashtags)),
				dash(cols.Value(rec, articles.LinkEN)),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// RecordToTableData converts one record to a column/value table in
// header order, followed by the engine fields.
func RecordToTableData(rec articles.Record) Data {
	rows := make([][]string, 0, rec.Len()+4)
	for _, k := range rec.Keys() {
		if articles.IsEngineColumn(k) {
			continue
		}
		rows = append(rows, []string{k, rec.Text(k)})
	}
	rows = append(rows,
		[]string{"Identity", rec.IdentityKey},
		[]string{"Row Number", dash(rec.RowNumber)},
		[]string{"Views", strconv.Itoa(rec.Views)},
		[]string{"Display Date", dash(rec.DisplayDate)},
	)
	return Data{Headers: []string{"Column", "Value"}, Rows: rows}
}

// CategoryCountsToTableData converts per-category counts to table format.
func CategoryCountsToTableData(counts []projection.CategoryCount) Data {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Category, strconv.Itoa(c.Count)})
	}
	return Data{
		Headers:         []string{"Category", "Articles"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// TopToTableData converts a most-viewed listing to table format.
func TopToTableData(records []articles.Record, cols articles.Columns) Data {
	rows := make([][]string, 0, len(records))
	for i := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Truncate(cols.Value(&records[i], articles.Title), maxCell),
			strconv.Itoa(records[i].Views),
		})
	}
	return Data{
		Headers:         []string{"#", "Title", "Views"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignRight},
	}
}

// CategoriesToTableData converts the category tree to one row per main
// category with its sub categories joined.
func CategoriesToTableData(c *vocabulary.Categories) Data {
	var rows [][]string
	for _, main := range c.Mains() {
		rows = append(rows, []string{main, dash(strings.Join(c.Subs(main), ", "))})
	}
	return Data{Headers: []string{"Main Category", "Sub Categories"}, Rows: rows}
}

// TagsToTableData converts a hashtag vocabulary to a single-column table.
func TagsToTableData(tags []string) Data {
	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{tag})
	}
	return Data{Headers: []string{"Hashtag"}, Rows: rows}
}

// StatusToTableData converts the sync state to a property/value table.
func StatusToTableData(info docsync.StatusInfo) Data {
	fetched := "never"
	if !info.FetchedAt.IsZero() {
		fetched = info.FetchedAt.Local().Format(time.DateTime)
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Status", info.Status.String()},
			{"Records", strconv.Itoa(info.Records)},
			{"Fetched At", fetched},
			{"Last Error", dash(info.LastError)},
		},
	}
}

// SuggestionToTableData converts a metadata suggestion to a property/value table.
func SuggestionToTableData(s *summarize.Suggestion) Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Title", s.Title},
			{"Main Category", dash(s.MainCategory)},
			{"Sub Category", dash(s.SubCategory)},
			{"Author", dash(s.Author)},
			{"Description", dash(s.Description)},
			{"Hashtags", dash(strings.Join(s.Hashtags, ", "))},
		},
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 3 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
