package docsync

import (
	"context"
	"strings"

	"github.com/agentstation/docsync/pkg/articles"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/summarize"
)

// Compile-time interface check to ensure proper implementation.
var _ Assistant = (*client)(nil)

// Assistant pre-fills record fields with the summarizer. Its methods never
// fail: summarizer errors and timeouts leave the input unchanged.
type Assistant interface {
	// AutoSummary fills an empty summary from the record's English link
	AutoSummary(ctx context.Context, rec articles.Record) articles.Record

	// Suggest proposes metadata for an article snippet, or returns nil
	Suggest(ctx context.Context, snippet string) *summarize.Suggestion
}

// AutoSummary returns rec with its summary column filled when the summary
// is empty and the English link is an http(s) URL.
func (c *client) AutoSummary(ctx context.Context, rec articles.Record) articles.Record {
	ctx = c.context(ctx)
	cols := c.Snapshot().Columns

	link := strings.TrimSpace(rec.Lookup(articles.LinkEN))
	if !strings.HasPrefix(link, "http") || strings.TrimSpace(rec.Lookup(articles.Summary)) != "" {
		return rec
	}

	callCtx, cancel := context.WithTimeout(ctx, c.options.summaryTimeout)
	defer cancel()

	text, err := c.options.summarizer.Summarize(callCtx, link)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Str("link", link).Msg("Auto summary unavailable")
		return rec
	}
	if text = strings.TrimSpace(text); text == "" {
		return rec
	}

	out := rec.Clone()
	out.Set(cols.Name(articles.Summary), text)
	return out
}

// Suggest asks the summarizer for metadata using the snapshot's category
// vocabulary.
func (c *client) Suggest(ctx context.Context, snippet string) *summarize.Suggestion {
	ctx = c.context(ctx)
	if strings.TrimSpace(snippet) == "" {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.options.summaryTimeout)
	defer cancel()

	s, err := c.options.summarizer.Suggest(callCtx, snippet, c.Snapshot().Categories)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Suggestion unavailable")
		return nil
	}
	return s
}
