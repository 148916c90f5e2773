package conflict_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/conflict"
	"github.com/agentstation/docsync/pkg/errors"
)

func existing(t *testing.T) ([]articles.Record, articles.Columns) {
	t.Helper()
	rows, err := articles.ParseRows([]byte(`[
		{"rowNumber": 1, "Document Title": "Vision Setup", "Link (EN)": "https://tm/vision", "Slug (EN)": "vision-setup"},
		{"rowNumber": 2, "Document Title": "Welding", "Link (EN)": "", "Slug (EN)": ""}
	]`))
	require.NoError(t, err)
	return articles.DedupeAt(rows, time.Now()), articles.ResolveColumns(articles.RowHeaders(rows))
}

func candidate(kv ...any) articles.Record {
	return articles.Record{RawRow: articles.NewRawRow(kv...)}
}

func TestFind(t *testing.T) {
	recs, cols := existing(t)
	tests := []struct {
		name     string
		cand     articles.Record
		exclude  string
		wantAxis conflict.Axis
		want     bool
	}{
		{"title case-insensitive", candidate("Document Title", "  vision SETUP "), "", conflict.AxisTitle, true},
		{"link different casing", candidate("Document Title", "New", "Link (EN)", "HTTPS://TM/VISION"), "", conflict.AxisLink, true},
		{"slug", candidate("Document Title", "New", "Slug (EN)", "Vision-Setup"), "", conflict.AxisSlug, true},
		{"alias spelling on candidate", candidate("title", "New", "Source URL", "https://tm/vision"), "", conflict.AxisLink, true},
		{"no match", candidate("Document Title", "Fresh"), "", "", false},
		{"empty fields never conflict", candidate("Document Title", "Other", "Link (EN)", " ", "Slug (EN)", ""), "", "", false},
		{"excluded identity", candidate("Document Title", "Vision Setup"), "row-1", "", false},
		{"all blank", candidate(), "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := conflict.Find(tt.cand, recs, cols, tt.exclude)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.want, conflict.Has(tt.cand, recs, cols, tt.exclude))
			if tt.want {
				assert.Equal(t, tt.wantAxis, c.Axis)
				assert.Equal(t, "row-1", c.Existing.IdentityKey)
			}
		})
	}
}

func TestFindSkipsOwnRowNumber(t *testing.T) {
	recs, cols := existing(t)
	edit := recs[0].Clone()
	assert.False(t, conflict.Has(edit, recs, cols, ""))

	edit.Set("Document Title", "Welding")
	c, ok := conflict.Find(edit, recs, cols, "")
	require.True(t, ok)
	assert.Equal(t, "row-2", c.Existing.IdentityKey)
}

func TestConflictSymmetry(t *testing.T) {
	a := candidate("Document Title", "Palletizing 101")
	a.IdentityKey = "a"
	b := candidate("Document Title", "PALLETIZING 101 ")
	b.IdentityKey = "b"

	cols := articles.ResolveColumns([]string{"Document Title"})
	assert.True(t, conflict.Has(b, []articles.Record{a}, cols, ""))
	assert.True(t, conflict.Has(a, []articles.Record{b}, cols, ""))
}

func TestFindReadsResolvedColumnsOnly(t *testing.T) {
	rows, err := articles.ParseRows([]byte(`[
		{"rowNumber": 1, "Document Title": "", "Title": "Welding"},
		{"rowNumber": 2, "Document Title": "Vision Setup", "Title": ""}
	]`))
	require.NoError(t, err)
	recs := articles.DedupeAt(rows, time.Now())
	cols := articles.ResolveColumns(articles.RowHeaders(rows))
	require.Equal(t, "Document Title", cols.Name(articles.Title))

	assert.False(t, conflict.Has(candidate("Document Title", "welding"), recs, cols, ""),
		"an empty resolved column is not backfilled from another spelling")
	assert.True(t, conflict.Has(candidate("Document Title", "vision setup"), recs, cols, ""))
}

func TestCheck(t *testing.T) {
	recs, cols := existing(t)
	err := conflict.Check(candidate("Document Title", "welding"), recs, cols, "")
	require.Error(t, err)
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "row-2")

	assert.NoError(t, conflict.Check(candidate("Document Title", "unique"), recs, cols, ""))
}
