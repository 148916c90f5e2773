package vocabulary

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/agentstation/docsync/pkg/articles"
)

// builtinCategories is the fixed seed of the category tree.
var builtinCategories = []struct {
	main string
	subs []string
}{
	{"RELEASE NOTES", nil},
	{"FUNDAMENTALS", []string{"Hardware & System Setup", "Communication protocol"}},
	{"TM AI VISION", []string{"Positioning Guideline", "Inspection Guideline"}},
	{"ADVANCED FEATURES", []string{"TM Welding Solution", "TM palletizing", "TM Plug&Play", "Tips & Technique"}},
	{"SECONDARY DEVELOPMENT", nil},
	{"GENERAL TROUBLESHOOTING", nil},
	{"DISTRIBUTOR AREA ONLY", []string{"Updates & Installations", "Troubleshooting Guide", "TMvision", "Service Manual - Maintenance & Repair"}},
}

// Categories maps main categories to ordered sub categories.
type Categories struct {
	mains []string
	subs  map[string][]string
}

// BuiltinCategories returns a fresh copy of the seed tree.
func BuiltinCategories() *Categories {
	c := &Categories{subs: make(map[string][]string)}
	for _, b := range builtinCategories {
		c.Add(b.main, "")
		for _, s := range b.subs {
			c.Add(b.main, s)
		}
	}
	return c
}

// DeriveCategories extends the seed tree with every main/sub category
// observed in records.
func DeriveCategories(records []articles.Record, cols articles.Columns) *Categories {
	c := BuiltinCategories()
	for i := range records {
		c.Add(cols.Value(&records[i], articles.MainCategory), cols.Value(&records[i], articles.SubCategory))
	}
	return c
}

// Add records a main category and, when sub is non-empty, a sub category
// under it. Blank and "-" values are ignored.
func (c *Categories) Add(main, sub string) {
	main, sub = strings.TrimSpace(main), strings.TrimSpace(sub)
	if main == "" || main == "-" {
		return
	}
	if c.subs == nil {
		c.subs = make(map[string][]string)
	}
	subs, ok := c.subs[main]
	if !ok {
		c.mains = append(c.mains, main)
		c.subs[main] = nil
	}
	if sub == "" || sub == "-" {
		return
	}
	for _, s := range subs {
		if s == sub {
			return
		}
	}
	c.subs[main] = append(subs, sub)
}

// Mains returns the main categories in order.
func (c *Categories) Mains() []string {
	return append([]string(nil), c.mains...)
}

// Subs returns the sub categories of main.
func (c *Categories) Subs(main string) []string {
	return append([]string(nil), c.subs[main]...)
}

// Has reports whether main is known.
func (c *Categories) Has(main string) bool {
	_, ok := c.subs[main]
	return ok
}

// MarshalJSON writes the tree as an ordered object of arrays.
func (c *Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range c.mains {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		subs := c.subs[m]
		if subs == nil {
			subs = []string{}
		}
		val, err := json.Marshal(subs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
