package docsync

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/conflict"
	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/remote"
)

// Compile-time interface check to ensure proper implementation.
var _ Writer = (*client)(nil)

// Writer applies mutations through the remote store. Validation failures
// are returned before any network call and change no state. Every write
// attempt, successful or not, is followed by a full refresh.
type Writer interface {
	// Create adds a new record
	Create(ctx context.Context, rec articles.Record) error

	// Update replaces the stored record with the same identity
	Update(ctx context.Context, rec articles.Record) error

	// Delete removes the record with the given identity key
	Delete(ctx context.Context, identity string) error

	// ToggleLinkedIn flips the LinkedIn-posted flag of a record
	ToggleLinkedIn(ctx context.Context, identity string) error
}

// Create validates rec against the snapshot and posts it with action CREATE.
func (c *client) Create(ctx context.Context, rec articles.Record) error {
	return c.mutate(ctx, remote.ActionCreate, func(snap *Snapshot) (articles.RawRow, error) {
		rec := rec.Clone()
		rec.RowNumber = ""
		if err := c.validate(snap, rec, ""); err != nil {
			return articles.RawRow{}, err
		}
		return rec.Payload(), nil
	})
}

// Update validates rec and posts it with action UPDATE. The row number is
// taken from the snapshot when rec does not carry one.
func (c *client) Update(ctx context.Context, rec articles.Record) error {
	return c.mutate(ctx, remote.ActionUpdate, func(snap *Snapshot) (articles.RawRow, error) {
		rec := rec.Clone()
		if rec.RowNumber == "" && rec.IdentityKey != "" {
			if stored, ok := snap.Find(rec.IdentityKey); ok {
				rec.RowNumber = stored.RowNumber
			}
		}
		if rec.RowNumber == "" {
			return articles.RawRow{}, errors.NewValidationError(articles.ColumnRowNumber, nil, constants.ErrMsgRowNumberRequired)
		}
		if err := c.validate(snap, rec, rec.IdentityKey); err != nil {
			return articles.RawRow{}, err
		}
		return rec.Payload(), nil
	})
}

// Delete posts only the row number of the record with action DELETE.
func (c *client) Delete(ctx context.Context, identity string) error {
	return c.mutate(ctx, remote.ActionDelete, func(snap *Snapshot) (articles.RawRow, error) {
		rec, ok := snap.Find(identity)
		if !ok {
			return articles.RawRow{}, errors.NewNotFoundError("article", identity)
		}
		if rec.RowNumber == "" {
			return articles.RawRow{}, errors.NewValidationError(articles.ColumnRowNumber, nil, constants.ErrMsgRowNumberRequired)
		}
		rowNumber, _ := rec.Payload().Get(articles.ColumnRowNumber)
		return articles.NewRawRow(articles.ColumnRowNumber, rowNumber), nil
	})
}

// ToggleLinkedIn flips Yes/No on the record's LinkedIn column and posts
// the record with action UPDATE.
func (c *client) ToggleLinkedIn(ctx context.Context, identity string) error {
	return c.mutate(ctx, remote.ActionUpdate, func(snap *Snapshot) (articles.RawRow, error) {
		stored, ok := snap.Find(identity)
		if !ok {
			return articles.RawRow{}, errors.NewNotFoundError("article", identity)
		}
		rec := stored.Clone()
		col := snap.Columns.Name(articles.LinkedIn)
		next := articles.LinkedInYes
		if rec.Text(col) == articles.LinkedInYes {
			next = articles.LinkedInNo
		}
		rec.Set(col, next)
		if rec.RowNumber == "" {
			return articles.RawRow{}, errors.NewValidationError(articles.ColumnRowNumber, nil, constants.ErrMsgRowNumberRequired)
		}
		return rec.Payload(), nil
	})
}

// validate enforces the required title and the uniqueness axes.
func (c *client) validate(snap *Snapshot, rec articles.Record, exclude string) error {
	if strings.TrimSpace(rec.Lookup(articles.Title)) == "" {
		return errors.NewValidationError(snap.Columns.Name(articles.Title), "", constants.ErrMsgTitleRequired)
	}
	return conflict.Check(rec, snap.Records, snap.Columns, exclude)
}

// mutate runs the write path. build turns the current snapshot into a
// payload or rejects the mutation; rejected mutations never reach the
// network. After the write the read path always runs, and a write error
// takes precedence over a refresh error.
func (c *client) mutate(ctx context.Context, action remote.Action, build func(*Snapshot) (articles.RawRow, error)) error {
	ctx = c.context(ctx)
	c.opMu.Lock()
	defer c.opMu.Unlock()

	ctx = logging.WithOperation(ctx, strings.ToLower(string(action)), uuid.NewString())
	logger := logging.FromContext(ctx)

	payload, err := build(c.Snapshot())
	if err != nil {
		logger.Debug().Err(err).Msg("Mutation rejected")
		return err
	}

	c.state.set(StatusSyncing, nil, false, 0)

	writeErr := c.write(ctx, action, payload)
	if writeErr != nil {
		logger.Warn().Err(writeErr).Msg("Remote write failed, refreshing anyway")
	}

	readErr := c.readPath(ctx)

	switch {
	case writeErr != nil:
		c.fail(ctx, writeErr, c.options.writeErrorDelay)
		return writeErr
	case readErr != nil:
		c.fail(ctx, readErr, c.options.fetchErrorDelay)
		return readErr
	default:
		c.state.set(StatusSuccess, nil, true, c.options.successDelay)
		return nil
	}
}

// write calls the remote store under the request deadline.
func (c *client) write(ctx context.Context, action remote.Action, payload articles.RawRow) error {
	callCtx, cancel := context.WithTimeout(ctx, c.options.requestTimeout)
	defer cancel()

	if err := c.store.Write(callCtx, action, payload); err != nil {
		return c.translate(callCtx, strings.ToLower(string(action)), err)
	}
	return nil
}
