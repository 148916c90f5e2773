package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/docsync/internal/server/handlers"
	"github.com/agentstation/docsync/internal/server/middleware"
	"github.com/agentstation/docsync/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(handlers.Deps{
		Client:         s.client,
		Cache:          s.cache,
		Broker:         s.broker,
		WSHub:          s.wsHub,
		SSEBroadcaster: s.sseBroadcaster,
		Upgrader:       s.upgrader,
		Logger:         s.logger,
		CatalogName:    s.config.CatalogName,
		StartTime:      s.startTime,
	})

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/health", h.HandleHealth)
	mux.HandleFunc(prefix+"/ready", h.HandleReady)

	// Articles
	mux.HandleFunc(prefix+"/articles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleListArticles(w, r)
		case http.MethodPost:
			h.HandleCreateArticle(w, r)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	})

	mux.HandleFunc(prefix+"/articles/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParams(r, prefix+"/articles/")
		switch {
		case len(parts) == 1:
			switch r.Method {
			case http.MethodGet:
				h.HandleGetArticle(w, r, parts[0])
			case http.MethodPut:
				h.HandleUpdateArticle(w, r, parts[0])
			case http.MethodDelete:
				h.HandleDeleteArticle(w, r, parts[0])
			default:
				response.MethodNotAllowed(w, r.Method)
			}
		case len(parts) == 2 && parts[1] == "linkedin":
			if r.Method != http.MethodPost {
				response.MethodNotAllowed(w, r.Method)
				return
			}
			h.HandleToggleLinkedIn(w, r, parts[0])
		default:
			response.NotFound(w, "Not found", r.URL.Path)
		}
	})

	// Sync
	mux.HandleFunc(prefix+"/refresh", method(http.MethodPost, h.HandleRefresh))
	mux.HandleFunc(prefix+"/status", method(http.MethodGet, h.HandleStatus))

	// Vocabulary and projections
	mux.HandleFunc(prefix+"/headers", method(http.MethodGet, h.HandleHeaders))
	mux.HandleFunc(prefix+"/categories", method(http.MethodGet, h.HandleCategories))
	mux.HandleFunc(prefix+"/hashtags", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.HandleListHashtags(w, r)
		case http.MethodPost:
			h.HandleAddHashtag(w, r)
		default:
			response.MethodNotAllowed(w, r.Method)
		}
	})
	mux.HandleFunc(prefix+"/hashtags/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathParams(r, prefix+"/hashtags/")
		if len(parts) != 1 {
			response.NotFound(w, "Not found", r.URL.Path)
			return
		}
		if r.Method != http.MethodDelete {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		h.HandleRemoveHashtag(w, r, parts[0])
	})
	mux.HandleFunc(prefix+"/stats", method(http.MethodGet, h.HandleStats))
	mux.HandleFunc(prefix+"/export.csv", method(http.MethodGet, h.HandleExportCSV))
	mux.HandleFunc(prefix+"/conflicts", method(http.MethodGet, h.HandleConflicts))
	mux.HandleFunc(prefix+"/suggest", method(http.MethodPost, h.HandleSuggest))

	// Real-time
	mux.HandleFunc(prefix+"/ws", h.HandleWebSocket)
	mux.HandleFunc(prefix+"/events", h.HandleSSE)
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	var chain []func(http.Handler) http.Handler
	chain = append(chain, middleware.Recovery(s.logger), middleware.Logger(s.logger))

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	if s.rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(s.rateLimiter))
	}

	return middleware.Chain(chain...)(handler)
}

// method restricts a handler to one HTTP method.
func method(m string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			response.MethodNotAllowed(w, r.Method)
			return
		}
		fn(w, r)
	}
}

// pathParams splits the escaped path after prefix into unescaped
// segments, so identities containing "/" survive as %2F.
func pathParams(r *http.Request, prefix string) []string {
	escaped := strings.TrimPrefix(r.URL.EscapedPath(), prefix)
	parts := []string{}
	for _, part := range strings.Split(escaped, "/") {
		if part == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(part); err == nil {
			part = unescaped
		}
		parts = append(parts, part)
	}
	return parts
}
