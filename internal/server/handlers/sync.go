package handlers

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/response"
)

// HandleRefresh handles POST /api/v1/refresh. Concurrent refreshes join
// the one in flight.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Refresh(r.Context()); err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, h.client.Status())
}

// HandleStatus handles GET /api/v1/status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.client.Status())
}
