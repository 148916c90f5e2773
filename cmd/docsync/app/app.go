// Package app provides the application context and dependency management
// for the docsync CLI. It centralizes configuration, logging and the
// catalog client, and wires them into the cobra command tree.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync"
	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/summarize/gemini"
	"github.com/agentstation/docsync/internal/transport"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/library"
	"github.com/agentstation/docsync/pkg/remote"
)

// App represents the docsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Catalog client (lazy-initialized, singleton)
	mu     sync.RWMutex
	client docsync.Client
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// CatalogName returns the name used for export filenames.
func (a *App) CatalogName() string {
	return a.config.CatalogName
}

// Client returns the catalog client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (docsync.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	store, err := a.buildStore()
	if err != nil {
		return nil, err
	}

	c, err := docsync.New(store, a.buildClientOptions()...)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// Shutdown performs graceful shutdown of the application.
// It stops any running background tasks and cleans up resources.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close catalog client during shutdown")
		return err
	}
	return nil
}

// buildStore creates the HTTP store for the configured endpoint.
func (a *App) buildStore() (remote.Store, error) {
	if a.config.Endpoint == "" {
		return nil, errors.NewConfigError("remote", "no endpoint configured: set DOCSYNC_ENDPOINT, endpoint in ~/.docsync.yaml, or --endpoint", nil)
	}
	return remote.NewHTTPStore(a.config.Endpoint,
		transport.WithRateLimit(a.config.RequestsPerSecond, constants.BurstSize),
		transport.WithUserAgent("docsync/"+a.version),
	)
}

// buildClientOptions constructs client options from the app configuration.
func (a *App) buildClientOptions() []docsync.Option {
	opts := []docsync.Option{
		docsync.WithLogger(a.logger),
		docsync.WithCatalogName(a.config.CatalogName),
		docsync.WithRequestTimeout(a.config.RequestTimeout),
		docsync.WithAutoRefreshInterval(a.config.AutoRefreshInterval),
		docsync.WithLibrary(library.NewFileStore(a.config.LibraryPath)),
	}

	if a.config.GeminiAPIKey == "" {
		a.logger.Debug().Msg("No Gemini API key configured, summaries disabled")
		return opts
	}
	summarizer, err := gemini.New(context.Background(), a.config.GeminiAPIKey, gemini.WithModel(a.config.GeminiModel))
	if err != nil {
		a.logger.Warn().Err(err).Msg("Summaries disabled")
		return opts
	}
	return append(opts, docsync.WithSummarizer(summarizer))
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom catalog client (useful for testing).
func WithClient(c docsync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
