// Package serve provides the HTTP server command for the docsync CLI.
package serve

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/docsync/internal/appcontext"
	"github.com/agentstation/docsync/internal/cmd/emoji"
	"github.com/agentstation/docsync/internal/server"
	"github.com/agentstation/docsync/pkg/errors"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "management",
		Short:   "Start the REST API server with WebSocket and SSE updates",
		Long: `Start a REST API server for the article catalog.

Features:
  - Endpoints for articles, statistics, categories, hashtags and export
  - WebSocket updates (/api/v1/ws)
  - Server-Sent Events (/api/v1/events)
  - In-memory caching of projections, cleared on every catalog change
  - Rate limiting (requests per minute per IP)
  - CORS support for browser clients
  - Graceful shutdown with connection draining

The catalog is fetched in the background on start. Until that completes
the ready endpoint reports the sync status.`,
		Example: `  # Start on default port 8080
  docsync serve

  # Refresh from the spreadsheet periodically (DOCSYNC_AUTO_REFRESH_INTERVAL)
  docsync serve --auto-refresh

  # Allow a browser client on another origin
  docsync serve --cors-origins "http://localhost:3000"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, args, app)
		},
	}

	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "Cache TTL for projections")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("auto-refresh", false, "Refresh the catalog periodically")

	return cmd
}

// runServer starts the API server and blocks until the command context ends.
func runServer(cmd *cobra.Command, _ []string, app appcontext.Interface) error {
	cfg, err := parseConfig(cmd)
	if err != nil {
		return err
	}
	cfg.CatalogName = app.CatalogName()
	logger := app.Logger()

	client, err := app.Client()
	if err != nil {
		return err
	}

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	srv, err := server.New(client, cfg, logger)
	if err != nil {
		return err
	}

	// the first fetch must not delay the listener
	go func() {
		if err := client.Refresh(cmd.Context()); err != nil {
			logger.Warn().Err(err).Msg("Initial catalog refresh failed")
		}
	}()

	if mustGetBool(cmd, "auto-refresh") {
		if err := client.AutoRefreshOn(); err != nil {
			return err
		}
		defer func() {
			if err := client.AutoRefreshOff(); err != nil {
				logger.Warn().Err(err).Msg("Stopping auto refresh failed")
			}
		}()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s API server listening on %s:%d%s\n", emoji.Info, cfg.Host, cfg.Port, cfg.PathPrefix)
	fmt.Fprintln(out, "   Press Ctrl+C to stop")

	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		return errors.WrapTransport("listen", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), err)
	}

	fmt.Fprintf(out, "%s API server stopped gracefully\n", emoji.Success)
	return nil
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:         mustGetString(cmd, "host"),
		Port:         mustGetInt(cmd, "port"),
		PathPrefix:   mustGetString(cmd, "prefix"),
		CORSEnabled:  mustGetBool(cmd, "cors"),
		CORSOrigins:  mustGetStringSlice(cmd, "cors-origins"),
		RateLimit:    mustGetInt(cmd, "rate-limit"),
		CacheTTL:     mustGetDuration(cmd, "cache-ttl"),
		ReadTimeout:  mustGetDuration(cmd, "read-timeout"),
		WriteTimeout: mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:  mustGetDuration(cmd, "idle-timeout"),
	}

	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		p, err := parsePort(envPort)
		if err != nil {
			return cfg, err
		}
		cfg.Port = p
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		cfg.Host = envHost
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, errors.NewValidationError("port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.RateLimit < 0 {
		return cfg, errors.NewValidationError("rate-limit", cfg.RateLimit, "must not be negative")
	}
	return cfg, nil
}

// parsePort parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, errors.NewValidationError("HTTP_PORT", portStr, "is not a number")
	}
	return port, nil
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
