// Package handlers provides the HTTP request handlers for the docsync API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/server/cache"
	"github.com/agentstation/docsync/internal/server/events"
	"github.com/agentstation/docsync/internal/server/sse"
	ws "github.com/agentstation/docsync/internal/server/websocket"
	"github.com/agentstation/docsync/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client         docsync.Client
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	catalogName    string
	startTime      time.Time
	now            func() time.Time
}

// Deps groups the collaborators of Handlers.
type Deps struct {
	Client         docsync.Client
	Cache          *cache.Cache
	Broker         *events.Broker
	WSHub          *ws.Hub
	SSEBroadcaster *sse.Broadcaster
	Upgrader       websocket.Upgrader
	Logger         *zerolog.Logger
	CatalogName    string
	StartTime      time.Time
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	return &Handlers{
		client:         d.Client,
		cache:          d.Cache,
		broker:         d.Broker,
		wsHub:          d.WSHub,
		sseBroadcaster: d.SSEBroadcaster,
		upgrader:       d.Upgrader,
		logger:         d.Logger,
		catalogName:    d.CatalogName,
		startTime:      d.StartTime,
		now:            time.Now,
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.WrapIO("read", "request body", err)
	}
	if len(body) == 0 {
		return errors.NewValidationError("body", nil, "request body is required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.WrapValidation("body", err)
	}
	return nil
}

// queryInt parses a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError(name, raw, "must be a non-negative integer")
	}
	return n, nil
}
