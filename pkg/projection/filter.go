// Package projection filters a published record set and serializes
// projections to CSV. It never re-sorts; input order is preserved.
package projection

import (
	"net/url"
	"strings"

	"github.com/agentstation/docsync/pkg/articles"
)

// All is the filter value that disables a category or LinkedIn filter.
const All = "All"

// OtherCategory is the category of records without a main category.
const OtherCategory = "Other"

// DateRange is an inclusive range of YYYY-MM-DD dates. An empty bound is open.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsSet reports whether either bound is set.
func (r DateRange) IsSet() bool {
	return r.Start != "" || r.End != ""
}

// contains compares a normalized date against the bounds. Zero-padded
// dates order lexically.
func (r DateRange) contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// Filter is the projection input. Conditions are combined with AND.
type Filter struct {
	Term     string    `json:"term,omitempty"`
	Category string    `json:"category,omitempty"`
	LinkedIn string    `json:"linkedin,omitempty"`
	Range    DateRange `json:"range"`
}

// ParseFilter reads a filter from query parameters:
// q, category, linkedin (All, Yes, No), start and end.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Term:     q.Get("q"),
		Category: q.Get("category"),
		LinkedIn: parseLinkedIn(q.Get("linkedin")),
		Range: DateRange{
			Start: articles.NormalizeDate(q.Get("start")),
			End:   articles.NormalizeDate(q.Get("end")),
		},
	}
}

func parseLinkedIn(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true":
		return articles.LinkedInYes
	case "no", "false":
		return articles.LinkedInNo
	default:
		return All
	}
}

// Apply returns the records matching every condition of f, in input order.
func (f Filter) Apply(records []articles.Record, cols articles.Columns) []articles.Record {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]articles.Record, 0, len(records))
	for i := range records {
		if f.matches(&records[i], cols, term) {
			out = append(out, records[i])
		}
	}
	return out
}

// Matches reports whether a single record passes f.
func (f Filter) Matches(rec *articles.Record, cols articles.Columns) bool {
	return f.matches(rec, cols, strings.ToLower(strings.TrimSpace(f.Term)))
}

func (f Filter) matches(rec *articles.Record, cols articles.Columns, term string) bool {
	if term != "" && !strings.Contains(searchText(rec), term) {
		return false
	}
	if !isAll(f.Category) && Category(rec, cols) != f.Category {
		return false
	}
	if !isAll(f.LinkedIn) {
		linkedIn := cols.Value(rec, articles.LinkedIn)
		if linkedIn == "" {
			linkedIn = articles.LinkedInNo
		}
		if linkedIn != f.LinkedIn {
			return false
		}
	}
	if f.Range.IsSet() {
		date := recordDate(rec, cols)
		if date == "" || !f.Range.contains(date) {
			return false
		}
	}
	return true
}

// Category returns the record's main category, or "Other".
func Category(rec *articles.Record, cols articles.Columns) string {
	if c := cols.Value(rec, articles.MainCategory); c != "" {
		return c
	}
	return OtherCategory
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

func recordDate(rec *articles.Record, cols articles.Columns) string {
	date := cols.Value(rec, articles.Date)
	if date == "-" {
		return ""
	}
	return date
}

// searchText is every column value joined by spaces, lowercased.
func searchText(rec *articles.Record) string {
	keys := rec.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, rec.Text(k))
	}
	return strings.ToLower(strings.Join(parts, " "))
}
