package projection

import (
	"sort"

	"github.com/agentstation/docsync/pkg/articles"
)

// CategoryCount is the number of records in one main category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CountByCategory counts records per main category, most populated first.
// Records without a category count as "Other"; a "-" category is skipped.
func CountByCategory(records []articles.Record, cols articles.Columns) []CategoryCount {
	counts := make(map[string]int)
	var order []string
	for i := range records {
		c := Category(&records[i], cols)
		if c == "-" {
			continue
		}
		if _, ok := counts[c]; !ok {
			order = append(order, c)
		}
		counts[c]++
	}
	out := make([]CategoryCount, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryCount{Category: c, Count: counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// inStatsRange is the stats variant of the date filter: undated records
// are always counted.
func inStatsRange(rec *articles.Record, cols articles.Columns, r DateRange) bool {
	date := recordDate(rec, cols)
	if date == "" {
		return true
	}
	return r.contains(date)
}

// TopByViews returns up to n records with the most views within r.
func TopByViews(records []articles.Record, cols articles.Columns, n int, r DateRange) []articles.Record {
	var out []articles.Record
	for i := range records {
		if inStatsRange(&records[i], cols, r) {
			out = append(out, records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Views > out[j].Views
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TotalViews sums the views of records within r.
func TotalViews(records []articles.Record, cols articles.Columns, r DateRange) int {
	total := 0
	for i := range records {
		if inStatsRange(&records[i], cols, r) {
			total += records[i].Views
		}
	}
	return total
}

// Stats bundles the overview figures.
type Stats struct {
	Total      int               `json:"total"`
	TotalViews int               `json:"total_views"`
	Categories []CategoryCount   `json:"categories"`
	Top        []articles.Record `json:"top"`
	Range      DateRange         `json:"range"`
}

// Summarize computes the overview figures for records.
func Summarize(records []articles.Record, cols articles.Columns, topN int, r DateRange) Stats {
	return Stats{
		Total:      len(records),
		TotalViews: TotalViews(records, cols, r),
		Categories: CountByCategory(records, cols),
		Top:        TopByViews(records, cols, topN, r),
		Range:      r,
	}
}
