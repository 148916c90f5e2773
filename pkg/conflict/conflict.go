// Package conflict decides whether a candidate record would duplicate an
// existing record's title, English link or English slug.
package conflict

import (
	"strings"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
)

// Axis names the field on which two records collide.
type Axis string

// Uniqueness axes, checked in this order.
const (
	AxisTitle Axis = "title"
	AxisLink  Axis = "link"
	AxisSlug  Axis = "slug"
)

var axes = []struct {
	axis  Axis
	field articles.Field
}{
	{AxisTitle, articles.Title},
	{AxisLink, articles.LinkEN},
	{AxisSlug, articles.SlugEN},
}

// Conflict describes the first collision found.
type Conflict struct {
	Axis     Axis
	Value    string
	Existing articles.Record
}

// Err converts the conflict into a typed ConflictError.
func (c Conflict) Err() error {
	return errors.NewConflictError(string(c.Axis), c.Value, c.Existing.IdentityKey)
}

// Find reports the first existing record that shares a non-empty title,
// link or slug with candidate, compared trimmed and case-insensitively.
// Existing records are read through the resolved cols. The record
// identified by excludeIdentity, and any record with the candidate's own
// row number, are skipped.
func Find(candidate articles.Record, existing []articles.Record, cols articles.Columns, excludeIdentity string) (Conflict, bool) {
	var raw, values [3]string
	hasValue := false
	for i, a := range axes {
		raw[i] = candidateValue(&candidate, cols, a.field)
		values[i] = fold(raw[i])
		hasValue = hasValue || values[i] != ""
	}
	if !hasValue {
		return Conflict{}, false
	}

	for i := range existing {
		rec := &existing[i]
		if excludeIdentity != "" && rec.IdentityKey == excludeIdentity {
			continue
		}
		if candidate.RowNumber != "" && rec.RowNumber == candidate.RowNumber {
			continue
		}
		for j, a := range axes {
			if values[j] != "" && fold(cols.Value(rec, a.field)) == values[j] {
				return Conflict{Axis: a.axis, Value: raw[j], Existing: *rec}, true
			}
		}
	}
	return Conflict{}, false
}

// Has reports whether candidate conflicts with any existing record.
func Has(candidate articles.Record, existing []articles.Record, cols articles.Columns, excludeIdentity string) bool {
	_, ok := Find(candidate, existing, cols, excludeIdentity)
	return ok
}

// Check returns a ConflictError when candidate conflicts, nil otherwise.
func Check(candidate articles.Record, existing []articles.Record, cols articles.Columns, excludeIdentity string) error {
	if c, ok := Find(candidate, existing, cols, excludeIdentity); ok {
		return c.Err()
	}
	return nil
}

// candidateValue reads f through the resolved column. A draft that does not
// carry that column at all (typed by hand under another accepted spelling)
// is read by alias instead.
func candidateValue(rec *articles.Record, cols articles.Columns, f articles.Field) string {
	if rec.Has(cols.Name(f)) {
		return cols.Value(rec, f)
	}
	return strings.TrimSpace(rec.Lookup(f))
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
