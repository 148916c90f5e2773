package docsync

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Syncer refreshes the snapshot from the remote store.
type Syncer interface {
	// Refresh fetches the remote snapshot and publishes it. Concurrent
	// calls share one in-flight refresh; a refresh requested while a
	// mutation runs starts after the mutation completes.
	Refresh(ctx context.Context) error
}

// Refresh runs the read path: cache-busted fetch, dedupe, derive, publish.
// On failure the previous snapshot stays published. The shared run is
// detached from the cancellation of whichever caller started it; each
// caller stops waiting when its own ctx ends.
func (c *client) Refresh(ctx context.Context) error {
	ctx = c.context(ctx)
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan("refresh", func() (any, error) {
		c.opMu.Lock()
		defer c.opMu.Unlock()

		ctx := logging.WithOperation(flightCtx, "refresh", uuid.NewString())
		c.state.set(StatusSyncing, nil, false, 0)
		if err := c.readPath(ctx); err != nil {
			c.fail(ctx, err, c.options.fetchErrorDelay)
			return nil, err
		}
		c.state.set(StatusSuccess, nil, true, c.options.successDelay)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			logging.FromContext(ctx).Debug().Msg("Joined in-flight refresh")
		}
		return res.Err
	case <-ctx.Done():
		return c.translate(ctx, "refresh", ctx.Err())
	}
}

// readPath fetches and publishes a snapshot. Callers hold opMu and own the
// state transitions.
func (c *client) readPath(ctx context.Context) error {
	logger := logging.FromContext(ctx)
	start := time.Now()

	rows, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	snap := c.derive(ctx, rows)
	c.publish(snap)

	logger.Info().
		Int("rows", len(rows)).
		Int("records", len(snap.Records)).
		Int("headers", len(snap.Headers)).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot published")
	return nil
}

// fetch calls the remote store under the request deadline.
func (c *client) fetch(ctx context.Context) ([]articles.RawRow, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.options.requestTimeout)
	defer cancel()

	rows, err := c.store.Fetch(callCtx)
	if err != nil {
		return nil, c.translate(callCtx, "fetch", err)
	}
	return rows, nil
}

// derive builds a snapshot from raw rows and writes the hashtag
// vocabulary through to the library.
func (c *client) derive(ctx context.Context, rows []articles.RawRow) *Snapshot {
	now := c.options.now()
	records := articles.DedupeAt(rows, now)
	headers := vocabulary.Headers(records)
	cols := articles.ResolveColumns(headers)

	c.libMu.Lock()
	tags := vocabulary.Hashtags(records, cols, c.library)
	c.saveLibraryLocked(ctx, tags)
	c.libMu.Unlock()

	return &Snapshot{
		Records:    records,
		Headers:    headers,
		Columns:    cols,
		Categories: vocabulary.DeriveCategories(records, cols),
		Hashtags:   tags,
		FetchedAt:  now,
	}
}

// fail moves to the error state; the published snapshot is left intact.
func (c *client) fail(ctx context.Context, err error, delay time.Duration) {
	logging.FromContext(ctx).Error().Err(err).Msg("Sync failed")
	c.state.set(StatusError, err, true, delay)
}

// translate maps deadline and cancellation failures onto the engine's
// error taxonomy. Other errors are already typed by the store.
func (c *client) translate(ctx context.Context, operation string, err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewTimeoutError(operation, c.options.requestTimeout.String(), err.Error())
	case stderrors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %w", operation, errors.ErrCanceled, err)
	case errors.IsTransport(err) || errors.IsShape(err) || errors.IsValidationError(err) || errors.IsNotFound(err):
		return err
	default:
		return errors.WrapTransport(operation, "", err)
	}
}
