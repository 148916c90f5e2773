package articles

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Normalized LinkedIn values.
const (
	LinkedInYes = "Yes"
	LinkedInNo  = "No"
)

// NormalizeLinkedIn maps yes/true (any case) to "Yes" and everything else
// to "No".
func NormalizeLinkedIn(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return LinkedInYes
		}
		return LinkedInNo
	}
	switch strings.ToLower(strings.TrimSpace(textOf(v))) {
	case "yes", "true":
		return LinkedInYes
	default:
		return LinkedInNo
	}
}

// CoerceViews converts a view count to a non-negative integer, 0 when the
// input is missing or not numeric.
func CoerceViews(v any) int {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// IdentityKey derives the deduplication key of a raw row: "row-<n>" when
// the row carries a row number, else "title|link" lowercased. ok is false
// when neither is available.
func IdentityKey(r RawRow) (key string, ok bool) {
	if n := rowNumberOf(r); n != "" {
		return "row-" + n, true
	}
	title := strings.ToLower(r.Lookup(Title))
	link := strings.ToLower(r.Lookup(LinkEN))
	if title == "" && link == "" {
		return "", false
	}
	return title + "|" + link, true
}

// Normalize turns one raw row into a canonical record. The date and
// LinkedIn columns named by cols are rewritten in place (and added when
// missing); the view count and creation time are coerced.
func Normalize(raw RawRow, cols Columns, now time.Time) Record {
	rec := Record{RawRow: raw.Clone()}
	rec.IdentityKey, _ = IdentityKey(raw)
	rec.RowNumber = rowNumberOf(raw)

	dateCol := cols.Name(Date)
	date := NormalizeDate(rec.Text(dateCol))
	rec.Set(dateCol, date)
	rec.DisplayDate = date

	linkedInCol := cols.Name(LinkedIn)
	rec.Set(linkedInCol, NormalizeLinkedIn(rec.values[linkedInCol]))

	if v, ok := rec.Get(ColumnViews); ok {
		rec.Views = CoerceViews(v)
	} else {
		rec.Views = CoerceViews(rec.values["Views"])
	}

	if created := coerceMillis(rec.values[ColumnCreatedAt]); created > 0 {
		rec.CreatedAt = created
	} else {
		rec.CreatedAt = now.UnixMilli()
	}
	return rec
}

func coerceMillis(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n
		}
	}
	return 0
}
