// Package docsync synchronizes an article catalog with a remote,
// schema-loose row store.
//
// A Client pulls the remote snapshot, deduplicates and normalizes it into
// canonical records, derives the header set and the category and hashtag
// vocabularies, and publishes the result as an immutable Snapshot.
// Mutations are validated locally (required title, no duplicate title,
// link or slug), posted to the remote store, and always followed by a
// full refetch so local state converges on the remote one.
//
// Example usage:
//
//	store, err := remote.NewHTTPStore("https://script.google.com/macros/s/.../exec")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := docsync.New(store,
//	    docsync.WithLibrary(library.NewFileStore("~/.docsync/hashtags.json")),
//	    docsync.WithRequestTimeout(15*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnRecordAdded(func(rec articles.Record) {
//	    log.Printf("New article: %s", rec.Lookup(articles.Title))
//	})
//
//	if err := client.Refresh(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	snap := client.Snapshot()
//	for _, rec := range snap.Records {
//	    fmt.Println(rec.IdentityKey, rec.Lookup(articles.Title))
//	}
package docsync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/remote"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Reader provides access to the published state.
type Reader interface {
	// Snapshot returns the last successfully published snapshot
	Snapshot() *Snapshot

	// Status returns the state machine view
	Status() StatusInfo
}

// Client manages a synchronized article catalog.
type Client interface {

	// Reader provides access to the published snapshot and status
	Reader

	// Syncer refreshes the snapshot from the remote store
	Syncer

	// Writer applies mutations through the remote store
	Writer

	// Library edits the persisted hashtag library
	Library

	// Projector filters, counts and exports the snapshot
	Projector

	// Assistant drafts summaries and metadata
	Assistant

	// AutoRefresher provides access to automatic refresh controls
	AutoRefresher

	// Hooks provides access to event callback registration
	Hooks

	// Close stops background work
	Close() error
}

// Snapshot is an immutable, fully derived view of the remote store.
// A new Snapshot replaces the previous one wholesale; callers must not
// modify its contents.
type Snapshot struct {
	Records    []articles.Record
	Headers    []string
	Columns    articles.Columns
	Categories *vocabulary.Categories
	Hashtags   []string
	FetchedAt  time.Time
}

// Find returns the record with the given identity key.
func (s *Snapshot) Find(identity string) (articles.Record, bool) {
	return articles.Find(s.Records, identity)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.Records)
}

// withHashtags returns a copy of s with a different hashtag vocabulary.
func (s *Snapshot) withHashtags(tags []string) *Snapshot {
	out := *s
	out.Hashtags = tags
	return &out
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// store is the authoritative remote row store
	store remote.Store

	// snapshot is the last successfully published snapshot
	snapshot atomic.Pointer[Snapshot]

	// opMu serializes every read and write path run
	opMu   sync.Mutex
	flight singleflight.Group
	state  *state

	// libMu guards the cached hashtag library
	libMu   sync.Mutex
	library []string

	// auto refresh state
	autoMu        sync.Mutex
	refreshTicker *time.Ticker
	refreshCancel context.CancelFunc

	hooks *hooks
}

// New creates a Client over store. The persisted hashtag library is
// loaded immediately; malformed library data is ignored. New does not
// fetch; call Refresh to load the first snapshot.
func New(store remote.Store, opts ...Option) (Client, error) {
	if store == nil {
		return nil, errors.NewConfigError("docsync", "remote store is required", nil)
	}

	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		store:   store,
		hooks:   newHooks(),
	}
	c.state = &state{notify: c.hooks.triggerStatus}

	ctx := c.context(context.Background())
	c.library = c.loadLibrary(ctx)

	cols := articles.DefaultColumns()
	c.snapshot.Store(&Snapshot{
		Columns:    cols,
		Categories: vocabulary.BuiltinCategories(),
		Hashtags:   vocabulary.Hashtags(nil, cols, c.library),
	})

	if o.autoRefreshEnabled {
		if err := c.AutoRefreshOn(); err != nil {
			return nil, err
		}
	}

	logging.FromContext(ctx).Debug().
		Int("library_tags", len(c.library)).
		Bool("auto_refresh", o.autoRefreshEnabled).
		Msg("Client created")

	return c, nil
}

// Snapshot returns the last successfully published snapshot.
func (c *client) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Status returns the current state, the last error and snapshot metadata.
func (c *client) Status() StatusInfo {
	status, err := c.state.get()
	snap := c.Snapshot()
	info := StatusInfo{
		Status:    status,
		FetchedAt: snap.FetchedAt,
		Records:   snap.Len(),
	}
	if err != nil {
		info.LastError = err.Error()
	}
	return info
}

// Close stops automatic refreshes and pending status timers.
func (c *client) Close() error {
	err := c.AutoRefreshOff()
	c.state.stop()
	return err
}

// context attaches the configured logger to ctx.
func (c *client) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	return ctx
}

// publish swaps in snap and fires record hooks.
func (c *client) publish(snap *Snapshot) {
	old := c.snapshot.Swap(snap)
	c.hooks.triggerSnapshotUpdate(old, snap)
}
