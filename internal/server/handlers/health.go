package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "docsync-api",
		"version": "v1",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /api/v1/ready. The server is ready once a
// snapshot has been fetched and the last sync did not fail.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	info := h.client.Status()
	if info.FetchedAt.IsZero() {
		response.ServiceUnavailable(w, "No snapshot fetched yet")
		return
	}
	if info.Status == docsync.StatusError {
		response.ServiceUnavailable(w, info.LastError)
		return
	}

	response.OK(w, map[string]any{
		"status":            "ready",
		"records":           info.Records,
		"fetched_at":        info.FetchedAt,
		"cache":             h.cache.GetStats(),
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
