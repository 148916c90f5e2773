package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/cmd/table"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/projection"
	"github.com/agentstation/docsync/pkg/summarize"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

const catalog = `[
	{"rowNumber": 1, "Document Title": "Palletizing Basics", "Main Category": "ADVANCED FEATURES",
	 "LinkedIn": "Yes", "Date": "2024-01-02", "views": 40},
	{"rowNumber": 2, "Document Title": "Vision Setup", "Main Category": "TM AI VISION", "LinkedIn": "No",
	 "Date": "2024-02-10", "views": 90}
]`

func load(t *testing.T) ([]articles.Record, articles.Columns) {
	t.Helper()
	rows, err := articles.ParseRows([]byte(catalog))
	require.NoError(t, err)
	records := articles.DedupeAt(rows, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	return records, articles.ResolveColumns(vocabulary.Headers(records))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"wide", FormatWide, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestArticlesJSON(t *testing.T) {
	records, cols := load(t)
	var buf bytes.Buffer
	require.NoError(t, Articles(&buf, FormatJSON, records, cols))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "row-1", got[0]["identityKey"])
	assert.Equal(t, "Vision Setup", got[1]["Document Title"])
}

func TestArticlesEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Articles(&buf, FormatJSON, nil, articles.DefaultColumns()))
	assert.Equal(t, "[]\n", buf.String())
}

func TestArticlesYAMLKeepsColumnOrder(t *testing.T) {
	records, cols := load(t)
	var buf bytes.Buffer
	require.NoError(t, Articles(&buf, FormatYAML, records[:1], cols))

	out := buf.String()
	assert.Contains(t, out, "Document Title: Palletizing Basics")
	assert.Contains(t, out, "identityKey: row-1")
	assert.Less(t, strings.Index(out, "Document Title"), strings.Index(out, "identityKey"))
}

func TestArticlesTable(t *testing.T) {
	records, cols := load(t)
	var buf bytes.Buffer
	require.NoError(t, Articles(&buf, FormatTable, records, cols))

	out := buf.String()
	assert.Contains(t, out, "row-1")
	assert.Contains(t, out, "Palletizing Basics")
	assert.Contains(t, out, "TM AI VISION")
	assert.NotContains(t, out, "identityKey")
}

func TestStatsTable(t *testing.T) {
	records, cols := load(t)
	stats := projection.Summarize(records, cols, 1, projection.DateRange{Start: "2024-01-01"})

	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, FormatTable, stats, cols))

	out := buf.String()
	assert.Contains(t, out, "Articles: 2\n")
	assert.Contains(t, out, "Total views: 130\n")
	assert.Contains(t, out, "Range: 2024-01-01 to open\n")
	assert.Contains(t, out, "Most viewed")
	assert.Contains(t, out, "Vision Setup")
}

func TestStatsJSON(t *testing.T) {
	records, cols := load(t)
	var buf bytes.Buffer
	require.NoError(t, Stats(&buf, FormatJSON, projection.Summarize(records, cols, 5, projection.DateRange{}), cols))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.EqualValues(t, 130, got["total_views"])
}

func TestTagsAndCategories(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tags(&buf, FormatJSON, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Tags(&buf, FormatTable, []string{"#robots"}))
	assert.Contains(t, buf.String(), "#robots")

	buf.Reset()
	require.NoError(t, Categories(&buf, FormatTable, vocabulary.BuiltinCategories()))
	assert.Contains(t, buf.String(), "TM AI VISION")
}

func TestStatusFormats(t *testing.T) {
	info := docsync.StatusInfo{Status: docsync.StatusSuccess, Records: 2}

	var buf bytes.Buffer
	require.NoError(t, Status(&buf, FormatJSON, info))
	assert.Contains(t, buf.String(), `"status": "success"`)

	buf.Reset()
	require.NoError(t, Status(&buf, FormatTable, info))
	assert.Contains(t, buf.String(), "success")
	assert.Contains(t, buf.String(), "never")
}

func TestSuggestionYAML(t *testing.T) {
	var buf bytes.Buffer
	s := &summarize.Suggestion{Title: "Gripper Guide", MainCategory: "FUNDAMENTALS", Hashtags: []string{"#gripper"}}
	require.NoError(t, Suggestion(&buf, FormatYAML, s))
	assert.Contains(t, buf.String(), "title: Gripper Guide")
	assert.Contains(t, buf.String(), "#gripper")
}

func TestTableFormatterStructFallback(t *testing.T) {
	type row struct {
		TotalViews int      `json:"total_views"`
		Tags       []string `json:"tags"`
	}

	data := toTableData(row{TotalViews: 7, Tags: []string{"#a", "#b"}})
	require.NotNil(t, data)
	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Equal(t, [][]string{{"Total Views", "7"}, {"Tags", "#a, #b"}}, data.Rows)

	slice := toTableData([]row{{TotalViews: 1}})
	require.NotNil(t, slice)
	assert.Equal(t, []string{"Total Views", "Tags"}, slice.Headers)

	assert.Nil(t, toTableData(42))
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a": 1}`, buf.String())
}

func TestTableFormatterPointer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, &table.Data{Headers: []string{"h"}, Rows: [][]string{{"cell"}}}))
	assert.Contains(t, buf.String(), "cell")
}
