// Package server exposes a docsync client over a JSON HTTP API with
// WebSocket and SSE streams of record and sync status events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/server/cache"
	"github.com/agentstation/docsync/internal/server/events"
	"github.com/agentstation/docsync/internal/server/events/adapters"
	"github.com/agentstation/docsync/internal/server/middleware"
	"github.com/agentstation/docsync/internal/server/sse"
	ws "github.com/agentstation/docsync/internal/server/websocket"
	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client         docsync.Client
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	startTime      time.Time
}

// New creates a server for client. Background services start with Start.
func New(client docsync.Client, cfg Config, logger *zerolog.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.NewConfigError("server", "client is required", nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/api/v1"
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	logger.Debug().Msg("Real-time transports subscribed to event broker")

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		client:         client,
		cache:          cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	s.connectHooks()
	return s, nil
}

// connectHooks publishes client events to the broker and drops cached
// projections whenever the snapshot changes.
func (s *Server) connectHooks() {
	s.client.OnRecordAdded(func(rec articles.Record) {
		s.cache.Clear()
		s.broker.Publish(events.ArticleAdded, map[string]any{"article": rec})
	})

	s.client.OnRecordUpdated(func(old, updated articles.Record) {
		s.cache.Clear()
		s.broker.Publish(events.ArticleUpdated, map[string]any{
			"old_article": old,
			"new_article": updated,
		})
	})

	s.client.OnRecordRemoved(func(rec articles.Record) {
		s.cache.Clear()
		s.broker.Publish(events.ArticleRemoved, map[string]any{"article": rec})
	})

	s.client.OnStatusChange(func(status docsync.Status) {
		if status == docsync.StatusSuccess {
			// headers and vocabularies may change without any record diff
			s.cache.Clear()
		}
		s.broker.Publish(events.SyncStatus, map[string]any{"status": status})
	})

	s.logger.Debug().Msg("Client hooks connected to event broker")
}

// Start starts background services (broker, WebSocket hub, SSE
// broadcaster, rate limiter eviction).
func (s *Server) Start() {
	go s.broker.Run(s.ctx)
	go s.wsHub.Run(s.ctx)
	go s.sseBroadcaster.Run(s.ctx)
	if s.rateLimiter != nil {
		go s.rateLimiter.Run(s.ctx)
	}
	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// HTTPServer returns an http.Server listening on the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := s.HTTPServer()
	s.Start()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", httpServer.Addr).Msg("API server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops background services.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()
	return nil
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
