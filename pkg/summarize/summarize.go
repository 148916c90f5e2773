// Package summarize defines the optional text generation collaborator used
// to draft article summaries and metadata. Implementations are best-effort:
// callers treat any error as "no suggestion" and carry on.
package summarize

import (
	"context"
	"strings"

	"github.com/agentstation/docsync/pkg/vocabulary"
)

// Suggestion is proposed metadata for an article snippet.
type Suggestion struct {
	Title        string   `json:"title"`
	MainCategory string   `json:"mainCategory"`
	SubCategory  string   `json:"subCategory,omitempty"`
	Author       string   `json:"author"`
	Description  string   `json:"description,omitempty"`
	Hashtags     []string `json:"hashtags"`
}

// Normalize trims every field and ensures each hashtag carries a leading "#".
// Blank hashtags are dropped.
func (s *Suggestion) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.MainCategory = strings.TrimSpace(s.MainCategory)
	s.SubCategory = strings.TrimSpace(s.SubCategory)
	s.Author = strings.TrimSpace(s.Author)
	s.Description = strings.TrimSpace(s.Description)

	tags := make([]string, 0, len(s.Hashtags))
	for _, tag := range s.Hashtags {
		if t := vocabulary.NormalizeTag(tag); t != "" {
			tags = append(tags, t)
		}
	}
	s.Hashtags = tags
}

// Summarizer drafts summaries and metadata suggestions.
type Summarizer interface {
	// Summarize returns a one or two sentence hook for the article at link.
	Summarize(ctx context.Context, link string) (string, error)

	// Suggest proposes metadata for a pasted article snippet, choosing
	// categories from the given vocabulary.
	Suggest(ctx context.Context, snippet string, categories *vocabulary.Categories) (*Suggestion, error)
}

// Nop is a Summarizer that never suggests anything.
type Nop struct{}

var _ Summarizer = Nop{}

// Summarize returns an empty summary.
func (Nop) Summarize(context.Context, string) (string, error) { return "", nil }

// Suggest returns no suggestion.
func (Nop) Suggest(context.Context, string, *vocabulary.Categories) (*Suggestion, error) {
	return nil, nil
}
