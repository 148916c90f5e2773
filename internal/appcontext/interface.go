// Package appcontext provides the shared application context interface
// used by all commands. Commands depend on this interface rather than on
// the concrete app so they can be tested against an in-memory catalog.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync"
)

// Interface defines what commands need from the application.
type Interface interface {
	// Client returns the catalog client, creating it lazily if needed.
	// The client has not necessarily fetched anything yet.
	Client() (docsync.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// CatalogName returns the name used for export filenames.
	CatalogName() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// Refreshed returns the app's client after one refresh, so one-shot
// commands act on the current remote state.
func Refreshed(ctx context.Context, app Interface) (docsync.Client, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}
	if err := client.Refresh(ctx); err != nil {
		return nil, err
	}
	app.Logger().Debug().
		Int("records", client.Snapshot().Len()).
		Msg("Catalog refreshed")
	return client, nil
}
