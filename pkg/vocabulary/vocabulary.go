// Package vocabulary derives the secondary views of a snapshot: the
// authored header set, the category tree and the hashtag vocabulary.
package vocabulary

import (
	"sort"
	"strings"

	"github.com/agentstation/docsync/pkg/articles"
)

// DefaultHashtags seed the hashtag vocabulary.
var DefaultHashtags = []string{
	"#vision",
	"#tutorial",
	"#application",
	"#troubleshooting",
	"#TM AI+",
	"#Auto TCP",
	"#welding",
	"#palletizing",
}

// Headers returns the union of authored column names across records in
// first-appearance order. Engine-internal columns are excluded.
func Headers(records []articles.Record) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range records {
		for _, k := range records[i].Keys() {
			if seen[k] || articles.IsEngineColumn(k) {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Hashtags returns the sorted union of the defaults, the well-formed
// entries of library and every tag found in the records' hashtag column.
func Hashtags(records []articles.Record, cols articles.Columns, library []string) []string {
	set := make(map[string]bool)
	for _, t := range DefaultHashtags {
		set[t] = true
	}
	for _, t := range library {
		if t = strings.TrimSpace(t); strings.HasPrefix(t, "#") {
			set[t] = true
		}
	}
	for i := range records {
		for _, t := range SplitTags(cols.Value(&records[i], articles.Hashtags)) {
			set[t] = true
		}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SplitTags splits a hashtag cell on ";" or ",", keeping trimmed tokens
// that start with "#".
func SplitTags(cell string) []string {
	var out []string
	for _, tok := range strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == ',' }) {
		if tok = strings.TrimSpace(tok); strings.HasPrefix(tok, "#") {
			out = append(out, tok)
		}
	}
	return out
}

// NormalizeTag trims a tag and adds the leading "#". It returns "" for
// blank input.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimLeft(tag, "#")
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	return "#" + tag
}

// AddTag appends tag to the record's hashtag column unless already present.
func AddTag(rec *articles.Record, cols articles.Columns, tag string) bool {
	tag = NormalizeTag(tag)
	if tag == "" {
		return false
	}
	tags := SplitTags(cols.Value(rec, articles.Hashtags))
	for _, t := range tags {
		if t == tag {
			return false
		}
	}
	rec.Set(cols.Name(articles.Hashtags), strings.Join(append(tags, tag), ", "))
	return true
}

// RemoveTag drops tag from the record's hashtag column.
func RemoveTag(rec *articles.Record, cols articles.Columns, tag string) bool {
	tag = NormalizeTag(tag)
	tags := SplitTags(cols.Value(rec, articles.Hashtags))
	kept := tags[:0]
	removed := false
	for _, t := range tags {
		if t == tag {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if removed {
		rec.Set(cols.Name(articles.Hashtags), strings.Join(kept, ", "))
	}
	return removed
}

// Draft returns a blank record with a column for every header and the
// first built-in main category selected.
func Draft(cols articles.Columns, headers []string) articles.Record {
	var rec articles.Record
	for _, h := range headers {
		rec.Set(h, "")
	}
	for _, f := range []articles.Field{articles.Title, articles.LinkEN, articles.MainCategory, articles.SubCategory, articles.Summary} {
		if !rec.Has(cols.Name(f)) {
			rec.Set(cols.Name(f), "")
		}
	}
	rec.SetMainCategory(cols, BuiltinCategories().Mains()[0])
	rec.Set(cols.Name(articles.LinkedIn), articles.LinkedInNo)
	return rec
}
