package articles

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Column names managed by the engine rather than authored content.
const (
	ColumnID          = "id"
	ColumnIdentityKey = "identityKey"
	ColumnCreatedAt   = "createdAt"
	ColumnViews       = "views"
	ColumnDisplayDate = "displayDate"
	ColumnRowNumber   = "rowNumber"
)

// RowNumberColumns are the accepted spellings of the remote row identity.
var RowNumberColumns = []string{"rowNumber", "RowNumber", "Row Number"}

var engineColumns = map[string]bool{
	ColumnID:          true,
	ColumnIdentityKey: true,
	ColumnCreatedAt:   true,
	ColumnViews:       true,
	"Views":           true,
	ColumnDisplayDate: true,
	"rowNumber":       true,
	"RowNumber":       true,
	"Row Number":      true,
}

// IsEngineColumn reports whether a column is engine-internal and never
// part of the authored header set.
func IsEngineColumn(name string) bool {
	return engineColumns[name]
}

// Record is a canonical catalog entry: the ordered authored columns plus
// engine-assigned fields.
type Record struct {
	RawRow

	// IdentityKey is unique within a snapshot and is the only handle
	// callers use to reference a record.
	IdentityKey string

	// RowNumber is the remote store's row identity; empty for drafts.
	RowNumber string

	// CreatedAt is epoch milliseconds, set once.
	CreatedAt int64

	// Views is the non-negative view count.
	Views int

	// DisplayDate mirrors the normalized date column.
	DisplayDate string
}

// Clone returns a record whose columns can be modified without touching r.
func (r Record) Clone() Record {
	out := r
	out.RawRow = r.RawRow.Clone()
	return out
}

// IsDraft reports whether the record has never been stored remotely.
func (r Record) IsDraft() bool {
	return r.RowNumber == ""
}

// SetMainCategory changes the main category and clears the sub category,
// which belongs to the previous main category.
func (r *Record) SetMainCategory(cols Columns, category string) {
	r.Set(cols.Name(MainCategory), category)
	r.Set(cols.Name(SubCategory), "")
}

// Raw converts the record back to the shape the remote store returns,
// carrying the row identity and creation time so that a second dedupe
// pass yields the same record.
func (r Record) Raw() RawRow {
	raw := r.RawRow.Clone()
	if r.RowNumber != "" && rowNumberOf(raw) == "" {
		raw.Set(ColumnRowNumber, rowNumberValue(r.RowNumber))
	}
	if r.CreatedAt > 0 {
		raw.Set(ColumnCreatedAt, json.Number(strconv.FormatInt(r.CreatedAt, 10)))
	}
	return raw
}

// Payload is the body sent to the remote store for a write: authored
// columns plus rowNumber when the record is stored remotely.
func (r Record) Payload() RawRow {
	var out RawRow
	for _, k := range r.keys {
		if k == ColumnID || k == ColumnIdentityKey || k == ColumnCreatedAt || k == ColumnDisplayDate {
			continue
		}
		if isRowNumberColumn(k) {
			continue
		}
		out.Set(k, r.values[k])
	}
	if r.RowNumber != "" {
		out.Set(ColumnRowNumber, rowNumberValue(r.RowNumber))
	}
	return out
}

// MarshalJSON writes the authored columns in order followed by the
// engine fields.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	skip := map[string]bool{
		ColumnIdentityKey: true,
		ColumnRowNumber:   true,
		ColumnCreatedAt:   true,
		ColumnViews:       true,
		ColumnDisplayDate: true,
	}
	if err := writeMembers(&buf, r.RawRow, skip, false); err != nil {
		return nil, err
	}

	var engine RawRow
	engine.Set(ColumnIdentityKey, r.IdentityKey)
	if r.RowNumber != "" {
		engine.Set(ColumnRowNumber, rowNumberValue(r.RowNumber))
	}
	engine.Set(ColumnCreatedAt, r.CreatedAt)
	engine.Set(ColumnViews, r.Views)
	engine.Set(ColumnDisplayDate, r.DisplayDate)
	if err := writeMembers(&buf, engine, nil, len(r.keys) > countSkipped(r.RawRow, skip)); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw RawRow
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	rec := Record{
		IdentityKey: raw.Text(ColumnIdentityKey),
		RowNumber:   rowNumberOf(raw),
		CreatedAt:   coerceMillis(raw.values[ColumnCreatedAt]),
		Views:       CoerceViews(raw.values[ColumnViews]),
		DisplayDate: raw.Text(ColumnDisplayDate),
	}
	for _, k := range []string{ColumnIdentityKey, ColumnCreatedAt, ColumnViews, ColumnDisplayDate, ColumnRowNumber} {
		raw.Delete(k)
	}
	rec.RawRow = raw
	*r = rec
	return nil
}

func countSkipped(r RawRow, skip map[string]bool) int {
	n := 0
	for _, k := range r.keys {
		if skip[k] {
			n++
		}
	}
	return n
}

func isRowNumberColumn(k string) bool {
	for _, c := range RowNumberColumns {
		if k == c {
			return true
		}
	}
	return false
}

// rowNumberOf returns the first row identity value that numbers a row.
func rowNumberOf(r RawRow) string {
	for _, c := range RowNumberColumns {
		if v := strings.TrimSpace(r.Text(c)); !unnumbered(v) {
			return v
		}
	}
	return ""
}

// unnumbered reports blank, false, zero and NaN row numbers.
func unnumbered(v string) bool {
	if v == "" || strings.EqualFold(v, "false") {
		return true
	}
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && (f == 0 || math.IsNaN(f))
}

// rowNumberValue keeps numeric row numbers numeric on the wire.
func rowNumberValue(s string) any {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return json.Number(s)
	}
	return s
}
