package handlers

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/conflict"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/projection"
)

// articleList is the body of GET /articles.
type articleList struct {
	Articles []articles.Record `json:"articles"`
	Headers  []string          `json:"headers"`
	Total    int               `json:"total"`
	Offset   int               `json:"offset"`
	Count    int               `json:"count"`
}

// HandleListArticles handles GET /api/v1/articles.
// Query: q, category, linkedin, start, end, offset, limit (0 = all).
func (h *Handlers) HandleListArticles(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	result := h.cache.Remember("articles:"+r.URL.RawQuery, func() any {
		snap := h.client.Snapshot()
		filtered := projection.ParseFilter(r.URL.Query()).Apply(snap.Records, snap.Columns)
		start, end := pageBounds(len(filtered), offset, limit)
		page := filtered[start:end]
		if page == nil {
			page = []articles.Record{}
		}

		return articleList{
			Articles: page,
			Headers:  snap.Headers,
			Total:    len(filtered),
			Offset:   offset,
			Count:    len(page),
		}
	})

	response.OK(w, result)
}

// pageBounds clamps offset and limit (0 = all) to a slice of length total.
func pageBounds(total, offset, limit int) (start, end int) {
	start = min(max(offset, 0), total)
	end = total
	if limit > 0 && limit < total-start {
		end = start + limit
	}
	return start, end
}

// HandleGetArticle handles GET /api/v1/articles/{identity}.
func (h *Handlers) HandleGetArticle(w http.ResponseWriter, _ *http.Request, identity string) {
	rec, ok := h.client.Snapshot().Find(identity)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("article", identity))
		return
	}
	response.OK(w, rec)
}

// HandleCreateArticle handles POST /api/v1/articles. With ?summarize=true
// an empty summary is drafted from the English link first.
func (h *Handlers) HandleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var rec articles.Record
	if err := decodeJSON(r, &rec); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	if r.URL.Query().Get("summarize") == "true" {
		rec = h.client.AutoSummary(r.Context(), rec)
	}

	if err := h.client.Create(r.Context(), rec); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	// The stored record is the one now holding the candidate's title.
	snap := h.client.Snapshot()
	if c, found := conflict.Find(rec, snap.Records, snap.Columns, ""); found {
		response.Created(w, c.Existing)
		return
	}
	response.Created(w, h.client.Status())
}

// HandleUpdateArticle handles PUT /api/v1/articles/{identity}.
func (h *Handlers) HandleUpdateArticle(w http.ResponseWriter, r *http.Request, identity string) {
	var rec articles.Record
	if err := decodeJSON(r, &rec); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	rec.IdentityKey = identity

	if _, ok := h.client.Snapshot().Find(identity); !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("article", identity))
		return
	}

	if err := h.client.Update(r.Context(), rec); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.respondRecord(w, identity)
}

// HandleDeleteArticle handles DELETE /api/v1/articles/{identity}.
func (h *Handlers) HandleDeleteArticle(w http.ResponseWriter, r *http.Request, identity string) {
	if err := h.client.Delete(r.Context(), identity); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleLinkedIn handles POST /api/v1/articles/{identity}/linkedin.
func (h *Handlers) HandleToggleLinkedIn(w http.ResponseWriter, r *http.Request, identity string) {
	if err := h.client.ToggleLinkedIn(r.Context(), identity); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	h.respondRecord(w, identity)
}

// respondRecord answers with the refreshed record, or the status when the
// record no longer resolves under the same identity.
func (h *Handlers) respondRecord(w http.ResponseWriter, identity string) {
	if rec, ok := h.client.Snapshot().Find(identity); ok {
		response.OK(w, rec)
		return
	}
	response.OK(w, h.client.Status())
}

// HandleConflicts handles GET /api/v1/conflicts?title=&link=&slug=&exclude=.
// It reports the record a candidate would duplicate, if any.
func (h *Handlers) HandleConflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cols := h.client.Snapshot().Columns

	var candidate articles.Record
	candidate.Set(cols.Name(articles.Title), q.Get("title"))
	candidate.Set(cols.Name(articles.LinkEN), q.Get("link"))
	candidate.Set(cols.Name(articles.SlugEN), q.Get("slug"))

	c, found := h.client.Conflict(candidate, q.Get("exclude"))
	if !found {
		response.OK(w, map[string]any{"conflict": nil})
		return
	}
	response.OK(w, map[string]any{"conflict": map[string]any{
		"axis":     c.Axis,
		"value":    c.Value,
		"existing": c.Existing,
	}})
}
