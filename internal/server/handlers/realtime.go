package handlers

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/events"
	ws "github.com/agentstation/docsync/internal/server/websocket"
)

// HandleWebSocket handles WebSocket connections at /api/v1/ws. The client
// first receives the current status, then every broker event.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register(client)

	if h.broker != nil {
		h.broker.Publish(events.ClientConnected, map[string]any{
			"client_id": client.ID(),
			"status":    h.client.Status(),
		})
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleSSE handles Server-Sent Events at /api/v1/events.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
