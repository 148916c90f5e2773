package articles

import (
	"sort"
	"strings"
	"time"
)

// Dedupe collapses a raw snapshot into a unique, identity-keyed record set.
// The first row seen for a key wins; rows without a key or without a title
// are dropped. The result is sorted by main category, then sub category.
func Dedupe(rows []RawRow) []Record {
	return DedupeAt(rows, time.Now())
}

// DedupeAt is Dedupe with a fixed clock for creation times.
func DedupeAt(rows []RawRow, now time.Time) []Record {
	seen := make(map[string]bool, len(rows))
	kept := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		key, ok := IdentityKey(row)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		if row.Lookup(Title) == "" {
			continue
		}
		kept = append(kept, row)
	}

	cols := ResolveColumns(RowHeaders(kept))
	records := make([]Record, 0, len(kept))
	for _, row := range kept {
		records = append(records, Normalize(row, cols, now))
	}
	Sort(records, cols)
	return records
}

// RowHeaders returns every column name across rows, in first-appearance order.
func RowHeaders(rows []RawRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// Sort orders records by main category then sub category, compared
// case-insensitively. Ties keep their input order.
func Sort(records []Record, cols Columns) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(&records[i], &records[j], cols)
	})
}

// Less reports whether a sorts strictly before b.
func Less(a, b *Record, cols Columns) bool {
	am, bm := strings.ToLower(cols.Value(a, MainCategory)), strings.ToLower(cols.Value(b, MainCategory))
	if am != bm {
		return am < bm
	}
	return strings.ToLower(cols.Value(a, SubCategory)) < strings.ToLower(cols.Value(b, SubCategory))
}

// Find returns the record with the given identity key.
func Find(records []Record, identity string) (Record, bool) {
	for _, r := range records {
		if r.IdentityKey == identity {
			return r, true
		}
	}
	return Record{}, false
}
