package docsync

import (
	"context"
	"slices"
	"sort"

	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Compile-time interface check to ensure proper implementation.
var _ Library = (*client)(nil)

// Library edits the persisted hashtag library. Every change is written
// through to the library store and published with the current snapshot.
type Library interface {
	// AddLibraryTag adds a tag, prefixing "#" when missing
	AddLibraryTag(ctx context.Context, tag string) ([]string, error)

	// RemoveLibraryTag removes a tag until a refresh finds it again
	RemoveLibraryTag(ctx context.Context, tag string) ([]string, error)
}

// AddLibraryTag adds tag to the hashtag vocabulary and returns the result.
func (c *client) AddLibraryTag(ctx context.Context, tag string) ([]string, error) {
	ctx = c.context(ctx)
	tag = vocabulary.NormalizeTag(tag)
	if tag == "" {
		return nil, errors.NewValidationError("tag", tag, "must not be empty")
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.libMu.Lock()
	defer c.libMu.Unlock()

	snap := c.Snapshot()
	if slices.Contains(snap.Hashtags, tag) {
		return snap.Hashtags, nil
	}
	tags := append(slices.Clone(snap.Hashtags), tag)
	sort.Strings(tags)

	if err := c.saveLibraryLocked(ctx, tags); err != nil {
		return nil, err
	}
	c.snapshot.Store(snap.withHashtags(tags))
	return tags, nil
}

// RemoveLibraryTag drops tag from the hashtag vocabulary. Defaults and tags
// still used by records return on the next refresh.
func (c *client) RemoveLibraryTag(ctx context.Context, tag string) ([]string, error) {
	ctx = c.context(ctx)
	tag = vocabulary.NormalizeTag(tag)

	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.libMu.Lock()
	defer c.libMu.Unlock()

	snap := c.Snapshot()
	i := slices.Index(snap.Hashtags, tag)
	if i < 0 {
		return nil, errors.NewNotFoundError("hashtag", tag)
	}
	tags := slices.Delete(slices.Clone(snap.Hashtags), i, i+1)

	if err := c.saveLibraryLocked(ctx, tags); err != nil {
		return nil, err
	}
	c.snapshot.Store(snap.withHashtags(tags))
	return tags, nil
}

// loadLibrary reads the persisted library. Missing or malformed data
// yields nil so that corruption never blocks the engine.
func (c *client) loadLibrary(ctx context.Context) []string {
	tags, err := c.options.library.Load(ctx)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Ignoring unreadable hashtag library")
		return nil
	}
	return tags
}

// saveLibraryLocked writes tags through when they differ from the cached
// library. Callers hold libMu.
func (c *client) saveLibraryLocked(ctx context.Context, tags []string) error {
	if slices.Equal(tags, c.library) {
		return nil
	}
	if err := c.options.library.Save(ctx, tags); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("Failed to persist hashtag library")
		return err
	}
	c.library = slices.Clone(tags)
	return nil
}
