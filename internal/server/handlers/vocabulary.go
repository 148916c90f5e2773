package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/agentstation/docsync/internal/server/events"
	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/projection"
)

// HandleHeaders handles GET /api/v1/headers.
func (h *Handlers) HandleHeaders(w http.ResponseWriter, _ *http.Request) {
	snap := h.client.Snapshot()
	response.OK(w, map[string]any{
		"headers": snap.Headers,
		"columns": snap.Columns.Map(),
	})
}

// HandleCategories handles GET /api/v1/categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.client.Snapshot().Categories)
}

// HandleListHashtags handles GET /api/v1/hashtags.
func (h *Handlers) HandleListHashtags(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{"hashtags": h.client.Snapshot().Hashtags})
}

// HandleAddHashtag handles POST /api/v1/hashtags with body {"tag": "..."}.
func (h *Handlers) HandleAddHashtag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tag string `json:"tag"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	tags, err := h.client.AddLibraryTag(r.Context(), body.Tag)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.libraryChanged(tags)
	response.OK(w, map[string]any{"hashtags": tags})
}

// HandleRemoveHashtag handles DELETE /api/v1/hashtags/{tag}.
func (h *Handlers) HandleRemoveHashtag(w http.ResponseWriter, r *http.Request, tag string) {
	tags, err := h.client.RemoveLibraryTag(r.Context(), tag)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.libraryChanged(tags)
	response.OK(w, map[string]any{"hashtags": tags})
}

// libraryChanged drops cached projections and notifies live clients.
func (h *Handlers) libraryChanged(tags []string) {
	h.cache.Clear()
	if h.broker != nil {
		h.broker.Publish(events.LibraryChanged, map[string]any{"hashtags": tags})
	}
}

// HandleStats handles GET /api/v1/stats.
// Query: the article filter plus top (default 5).
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r, "top", constants.DefaultTopN)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	stats := h.cache.Remember("stats:"+r.URL.RawQuery, func() any {
		return h.client.Stats(projection.ParseFilter(r.URL.Query()), top)
	})
	response.OK(w, stats)
}

// HandleExportCSV handles GET /api/v1/export.csv. The body is the
// filtered projection with a UTF-8 byte order mark.
func (h *Handlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	body := h.client.CSV(projection.ParseFilter(r.URL.Query()))
	name := projection.Filename(h.catalogName, h.now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// HandleSuggest handles POST /api/v1/suggest with body {"snippet": "..."}.
// A suggestion that cannot be produced yields null data.
func (h *Handlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Snippet string `json:"snippet"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, h.client.Suggest(r.Context(), body.Snippet))
}
