package articles

import "strings"

// Field is a logical catalog field. The remote store may spell the
// backing column in several ways.
type Field int

// Logical fields.
const (
	Title Field = iota
	LinkEN
	SlugEN
	MainCategory
	SubCategory
	Summary
	Author
	LinkedIn
	Hashtags
	Date
	ChineseTitle
	LinkZH
	SlugZH

	fieldCount
)

type columnDef struct {
	name      string
	column    string   // default column name when no header matches
	spellings []string // accepted lowercase spellings, in priority order
	contains  string   // substring fallback, lowercase
}

var columnDefs = [fieldCount]columnDef{
	Title:        {name: "title", column: "Document Title", spellings: []string{"document title", "title"}},
	LinkEN:       {name: "link_en", column: "Link (EN)", spellings: []string{"link (en)", "link", "source url"}},
	SlugEN:       {name: "slug_en", column: "Slug (EN)", spellings: []string{"slug (en)"}},
	MainCategory: {name: "main_category", column: "Main Category", spellings: []string{"main category", "category"}},
	SubCategory:  {name: "sub_category", column: "Sub Category", spellings: []string{"sub category", "sub hierarchy"}},
	Summary:      {name: "summary", column: "Article Summary", spellings: []string{"article summary", "description"}},
	Author:       {name: "author", column: "Author", spellings: []string{"author"}},
	LinkedIn:     {name: "linkedin", column: "LinkedIn", spellings: []string{"linkedin", "linkedin posted"}, contains: "linkedin"},
	Hashtags:     {name: "hashtags", column: "Hashtags", spellings: []string{"hashtags"}},
	Date:         {name: "date", column: "Date", spellings: []string{"date", "publish date"}},
	ChineseTitle: {name: "chinese_title", column: "Chinese Title", spellings: []string{"chinese title"}, contains: "chinese title"},
	LinkZH:       {name: "link_zh", column: "Link (ZH)", spellings: []string{"link (zh)"}, contains: "chinese link"},
	SlugZH:       {name: "slug_zh", column: "Slug (ZH)", spellings: []string{"slug (zh)"}},
}

// Fields returns every logical field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// String returns the field's snake_case name.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return columnDefs[f].name
}

// DefaultColumn is the column written when no existing header matches f.
func (f Field) DefaultColumn() string {
	return columnDefs[f].column
}

// Matches reports whether column is an accepted spelling of f.
func (f Field) Matches(column string) bool {
	return f.matchesExact(column) || f.matchesContains(column)
}

func (f Field) matchesExact(column string) bool {
	lower := strings.ToLower(strings.TrimSpace(column))
	for _, s := range columnDefs[f].spellings {
		if lower == s {
			return true
		}
	}
	return false
}

func (f Field) matchesContains(column string) bool {
	c := columnDefs[f].contains
	return c != "" && strings.Contains(strings.ToLower(column), c)
}

// ParseField resolves a field by its name ("title", "link_en", ...).
func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f := Field(0); f < fieldCount; f++ {
		if columnDefs[f].name == name {
			return f, true
		}
	}
	return 0, false
}

// Columns maps each logical field to the concrete column name of the
// current header set. The zero value is not useful; use ResolveColumns
// or DefaultColumns.
type Columns struct {
	names [fieldCount]string
}

// DefaultColumns maps every field to its default column name.
func DefaultColumns() Columns {
	var c Columns
	for f := Field(0); f < fieldCount; f++ {
		c.names[f] = columnDefs[f].column
	}
	return c
}

// ResolveColumns picks, per field, the first header that is an accepted
// spelling (case-insensitive). Substring fallbacks are tried only after
// no exact spelling matched. Unmatched fields keep the default column.
func ResolveColumns(headers []string) Columns {
	c := DefaultColumns()
	for f := Field(0); f < fieldCount; f++ {
		if h, ok := findHeader(headers, f.matchesExact); ok {
			c.names[f] = h
			continue
		}
		if h, ok := findHeader(headers, f.matchesContains); ok {
			c.names[f] = h
		}
	}
	return c
}

func findHeader(headers []string, match func(string) bool) (string, bool) {
	for _, h := range headers {
		if match(h) {
			return h, true
		}
	}
	return "", false
}

// Name returns the column backing f.
func (c Columns) Name(f Field) string {
	if c.names[f] == "" {
		return columnDefs[f].column
	}
	return c.names[f]
}

// Value reads f from a record through the resolved column.
func (c Columns) Value(r *Record, f Field) string {
	return strings.TrimSpace(r.Text(c.Name(f)))
}

// Map returns field name → column, for display and JSON.
func (c Columns) Map() map[string]string {
	out := make(map[string]string, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out[f.String()] = c.Name(f)
	}
	return out
}
