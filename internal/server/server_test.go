package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/library"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/remote"
)

const seed = `[
	{"rowNumber": 1, "Document Title": "Palletizing Basics", "Link (EN)": "https://tm.example/pallet", "Main Category": "ADVANCED FEATURES", "LinkedIn": "Yes", "Date": "2024-01-02", "views": 40, "Hashtags": "#palletizing"},
	{"rowNumber": 2, "Document Title": "Vision Setup", "Link (EN)": "https://tm.example/vision", "Slug (EN)": "vision-setup", "Main Category": "TM AI VISION", "LinkedIn": "No", "Date": "2024-02-10", "views": 90}
]`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *response.Error `json:"error"`
}

type fixture struct {
	store   *remote.MemoryStore
	client  docsync.Client
	server  *Server
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logging.DisableLoggingForTest(t)

	rows, err := articles.ParseRows([]byte(seed))
	require.NoError(t, err)
	store := remote.NewMemoryStore(rows...)

	client, err := docsync.New(store,
		docsync.WithLibrary(library.NewMemoryStore()),
		docsync.WithStatusDelays(0, 0, 0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultConfig()
	cfg.RateLimit = 0
	srv, err := New(client, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &fixture{store: store, client: client, server: srv, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (f *fixture) refresh(t *testing.T) {
	t.Helper()
	rec, _ := f.do(t, http.MethodPost, "/api/v1/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestNewDoesNotBlockBeforeStart(t *testing.T) {
	client, err := docsync.New(remote.NewMemoryStore())
	require.NoError(t, err)
	defer client.Close()

	done := make(chan struct{})
	go func() {
		srv, err := New(client, DefaultConfig(), nil)
		assert.NoError(t, err)
		assert.NoError(t, srv.Shutdown(context.Background()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server.New deadlocked before Start")
	}
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(nil, DefaultConfig(), nil)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRefreshAndStatus(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeData[map[string]any](t, env)
	assert.Equal(t, float64(2), status["records"])

	rec, env = f.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status = decodeData[map[string]any](t, env)
	assert.Equal(t, "idle", status["status"])

	rec, _ = f.do(t, http.MethodGet, "/api/v1/refresh", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRefreshRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FetchErr = errors.NewTransportError("fetch", "memory", http.StatusInternalServerError, nil)

	rec, env := f.do(t, http.MethodPost, "/api/v1/refresh", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "REMOTE_UNAVAILABLE", env.Error.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListArticles(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	tests := []struct {
		name  string
		query string
		total int
		count int
	}{
		{"all", "", 2, 2},
		{"search", "?q=vision", 1, 1},
		{"category", "?category=ADVANCED%20FEATURES", 1, 1},
		{"linkedin", "?linkedin=Yes", 1, 1},
		{"date range", "?start=2024-02-01&end=2024-12-31", 1, 1},
		{"page", "?limit=1&offset=1", 2, 1},
		{"offset past end", "?offset=10", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := f.do(t, http.MethodGet, "/api/v1/articles"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			list := decodeData[struct {
				Articles []map[string]any `json:"articles"`
				Total    int              `json:"total"`
				Count    int              `json:"count"`
			}](t, env)
			assert.Equal(t, tt.total, list.Total)
			assert.Equal(t, tt.count, list.Count)
			assert.Len(t, list.Articles, tt.count)
		})
	}

	rec, _ := f.do(t, http.MethodGet, "/api/v1/articles?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func countArticles(t *testing.T, f *fixture) int {
	t.Helper()
	_, env := f.do(t, http.MethodGet, "/api/v1/articles", nil)
	return decodeData[struct {
		Total int `json:"total"`
	}](t, env).Total
}

func TestArticleLifecycle(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	// Primes the list cache; writes must invalidate it.
	require.Equal(t, 2, countArticles(t, f))

	rec, env := f.do(t, http.MethodPost, "/api/v1/articles", map[string]any{
		"Document Title": "Gripper Guide",
		"Link (EN)":      "https://tm.example/gripper",
		"Main Category":  "ADVANCED FEATURES",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[map[string]any](t, env)
	assert.Equal(t, "row-3", created["identityKey"])
	assert.Equal(t, "Gripper Guide", created["Document Title"])
	assert.Equal(t, 3, countArticles(t, f))

	rec, env = f.do(t, http.MethodGet, "/api/v1/articles/row-3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://tm.example/gripper", decodeData[map[string]any](t, env)["Link (EN)"])

	rec, env = f.do(t, http.MethodPut, "/api/v1/articles/row-3", map[string]any{
		"Document Title": "Gripper Guide v2",
		"Link (EN)":      "https://tm.example/gripper",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Gripper Guide v2", decodeData[map[string]any](t, env)["Document Title"])

	rec, env = f.do(t, http.MethodPost, "/api/v1/articles/row-3/linkedin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, articles.LinkedInYes, decodeData[map[string]any](t, env)["LinkedIn"])

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/articles/row-3", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, countArticles(t, f))

	rec, env = f.do(t, http.MethodGet, "/api/v1/articles/row-3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	actions := make([]remote.Action, 0, 4)
	for _, w := range f.store.Writes() {
		actions = append(actions, w.Action)
	}
	assert.Equal(t, []remote.Action{remote.ActionCreate, remote.ActionUpdate, remote.ActionUpdate, remote.ActionDelete}, actions)
}

func TestCreateRejected(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"duplicate title", map[string]any{"Document Title": "  vision SETUP "}, http.StatusConflict, "CONFLICT"},
		{"duplicate slug", map[string]any{"Document Title": "New", "Slug (EN)": "Vision-Setup"}, http.StatusConflict, "CONFLICT"},
		{"missing title", map[string]any{"Link (EN)": "https://tm.example/new"}, http.StatusBadRequest, "BAD_REQUEST"},
		{"not an object", []string{"x"}, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := f.do(t, http.MethodPost, "/api/v1/articles", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	rec, _ := f.do(t, http.MethodPost, "/api/v1/articles", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, f.store.Writes(), "rejected mutations never reach the remote store")
}

func TestUpdateAndToggleUnknownArticle(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	rec, _ := f.do(t, http.MethodPut, "/api/v1/articles/row-99", map[string]any{"Document Title": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/articles/row-99/linkedin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/articles/row-99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/articles/row-1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/articles/row-1/comments", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEscapedIdentity(t *testing.T) {
	logging.DisableLoggingForTest(t)

	// Rows without a row number are keyed by "title|link".
	rows, err := articles.ParseRows([]byte(`[{"Document Title": "Loose Row", "Link (EN)": "https://tm.example/a/b"}]`))
	require.NoError(t, err)
	client, err := docsync.New(&fetchOnly{rows: rows}, docsync.WithStatusDelays(0, 0, 0))
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.Refresh(context.Background()))

	cfg := DefaultConfig()
	cfg.RateLimit = 0
	srv, err := New(client, cfg, nil)
	require.NoError(t, err)
	f := &fixture{client: client, server: srv, handler: srv.Handler()}

	rec, env := f.do(t, http.MethodGet, "/api/v1/articles/loose%20row%7Chttps:%2F%2Ftm.example%2Fa%2Fb", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Loose Row", decodeData[map[string]any](t, env)["Document Title"])
}

// fetchOnly serves fixed rows and rejects writes.
type fetchOnly struct {
	rows []articles.RawRow
}

func (s *fetchOnly) Fetch(context.Context) ([]articles.RawRow, error) {
	return s.rows, nil
}

func (s *fetchOnly) Write(context.Context, remote.Action, articles.RawRow) error {
	return errors.NewTransportError("write", "", http.StatusForbidden, nil)
}

func TestHashtagLibrary(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/hashtags", map[string]string{"tag": "robotics"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tags := decodeData[map[string][]string](t, env)["hashtags"]
	assert.Contains(t, tags, "#robotics")
	assert.Contains(t, tags, "#palletizing")

	rec, env = f.do(t, http.MethodGet, "/api/v1/hashtags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeData[map[string][]string](t, env)["hashtags"], "#robotics")

	rec, env = f.do(t, http.MethodDelete, "/api/v1/hashtags/%23robotics", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decodeData[map[string][]string](t, env)["hashtags"], "#robotics")

	rec, _ = f.do(t, http.MethodDelete, "/api/v1/hashtags/%23robotics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/hashtags", map[string]string{"tag": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVocabularyEndpoints(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/headers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	headers := decodeData[struct {
		Headers []string          `json:"headers"`
		Columns map[string]string `json:"columns"`
	}](t, env)
	assert.Contains(t, headers.Headers, "Document Title")
	assert.NotContains(t, headers.Headers, "rowNumber")
	assert.Equal(t, "Document Title", headers.Columns["title"])

	rec, env = f.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decodeData[map[string][]string](t, env)
	assert.Contains(t, categories, "TM AI VISION")

	rec, env = f.do(t, http.MethodGet, "/api/v1/stats?top=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeData[struct {
		Total      int `json:"total"`
		TotalViews int `json:"total_views"`
		Top        []map[string]any
	}](t, env)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 130, stats.TotalViews)
	require.Len(t, stats.Top, 1)
	assert.Equal(t, "Vision Setup", stats.Top[0]["Document Title"])

	rec, env = f.do(t, http.MethodGet, "/api/v1/conflicts?link=HTTPS://tm.example/vision", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeData[map[string]map[string]any](t, env)["conflict"]
	require.NotNil(t, found)
	assert.Equal(t, "link", found["axis"])

	rec, env = f.do(t, http.MethodGet, "/api/v1/conflicts?link=https://tm.example/vision&exclude=row-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[map[string]map[string]any](t, env)["conflict"])
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	f.refresh(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/export.csv?q=vision", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "TM_Articles_Filtered_")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeff"), "CSV starts with a byte order mark")
	assert.Contains(t, body, "Vision Setup")
	assert.NotContains(t, body, "Palletizing Basics")
}

func TestSuggestWithoutSummarizer(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/suggest", map[string]string{"snippet": "TM robots now ship with..."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", string(env.Data))
}

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready before the first fetch")

	f.refresh(t)
	rec, env := f.do(t, http.MethodGet, "/api/v1/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeData[map[string]any](t, env)["records"])
}

func TestWebSocketEvents(t *testing.T) {
	f := newFixture(t)

	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the connection to be registered before generating events.
	require.Eventually(t, func() bool { return f.server.wsHub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, f.client.Refresh(context.Background()))

	seen := map[string]int{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for seen["article.added"] < 2 || seen["sync.status"] == 0 {
		var msg struct {
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg.Type]++
	}
	assert.Zero(t, seen["article.removed"])
}
