// Package gemini implements summarize.Summarizer on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/summarize"
	"github.com/agentstation/docsync/pkg/vocabulary"
)

// generator is the slice of *genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client drafts summaries and metadata with a Gemini model.
type Client struct {
	models generator
	model  string
}

var _ summarize.Summarizer = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// New creates a Gemini client for the Gemini API backend.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &errors.ConfigError{
			Component: "gemini",
			Message:   "API key required: set GEMINI_API_KEY or gemini_api_key",
			Err:       errors.ErrAPIKeyRequired,
		}
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewConfigError("gemini", "failed to create client", err)
	}

	return newClient(gc.Models, opts...), nil
}

func newClient(models generator, opts ...Option) *Client {
	c := &Client{models: models, model: constants.DefaultGeminiModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
	},
	Required: []string{"summary"},
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":        {Type: genai.TypeString},
		"mainCategory": {Type: genai.TypeString},
		"subCategory":  {Type: genai.TypeString},
		"author":       {Type: genai.TypeString},
		"description":  {Type: genai.TypeString},
		"hashtags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"title", "mainCategory", "author", "hashtags"},
}

// Summarize returns a short hook for the article at link.
func (c *Client) Summarize(ctx context.Context, link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", errors.NewValidationError("link", link, "is required")
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.generate(ctx, "summarize", summaryPrompt(link), summarySchema, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Summary), nil
}

// Suggest proposes metadata for snippet. The snippet is truncated to
// constants.MaxSummarySnippet characters.
func (c *Client) Suggest(ctx context.Context, snippet string, categories *vocabulary.Categories) (*summarize.Suggestion, error) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return nil, errors.NewValidationError("snippet", snippet, "is required")
	}
	if categories == nil {
		categories = vocabulary.BuiltinCategories()
	}

	prompt, err := suggestPrompt(snippet, categories)
	if err != nil {
		return nil, err
	}

	var s summarize.Suggestion
	if err := c.generate(ctx, "suggest", prompt, suggestionSchema, &s); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

func (c *Client) generate(ctx context.Context, operation, prompt string, schema *genai.Schema, out any) error {
	logger := logging.FromContext(ctx)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.NewTimeoutError(operation, "", err.Error())
		}
		return errors.WrapTransport(operation, "gemini/"+c.model, err)
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Text())
	}
	if text == "" {
		return errors.NewShapeError("JSON object", "empty response", nil)
	}

	if err := json.Unmarshal([]byte(stripFence(text)), out); err != nil {
		logger.Debug().Str("operation", operation).Str("response", text).Msg("Unparseable model response")
		return errors.WrapParse("json", "", err)
	}
	return nil
}

// stripFence removes a ```json fence some models wrap around JSON output.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func summaryPrompt(link string) string {
	return "Write a professional technical summary of one or two sentences for the article at the link below. " +
		"It will open a LinkedIn post, so make it an engaging hook for engineers.\n\n" +
		"Link: " + link
}

func suggestPrompt(snippet string, categories *vocabulary.Categories) (string, error) {
	if len(snippet) > constants.MaxSummarySnippet {
		snippet = snippet[:constants.MaxSummarySnippet]
	}
	structure, err := json.Marshal(categories)
	if err != nil {
		return "", errors.WrapParse("json", "", err)
	}

	var b strings.Builder
	b.WriteString("You catalog technical documentation for Techman Robot (TM Robot) collaborative robots: ")
	b.WriteString("AI vision, palletizing, welding, and PLC communication.\n")
	b.WriteString("Read the article text or link below and propose accurate metadata.\n\n")
	fmt.Fprintf(&b, "Category structure (main category to sub categories): %s\n\n", structure)
	fmt.Fprintf(&b, "Article: %q\n\n", snippet)
	b.WriteString("Fields:\n")
	b.WriteString("- title: a professional technical title.\n")
	b.WriteString("- mainCategory: a key of the category structure, or a clearly better new technical category.\n")
	b.WriteString("- subCategory: a specific topic under the main category.\n")
	b.WriteString("- author: the detected author, otherwise 'TM Technical Team'.\n")
	b.WriteString("- description: a concise technical summary of one or two sentences.\n")
	b.WriteString("- hashtags: three to five technical hashtags such as #AI, #Modbus, #Safety.\n")
	return b.String(), nil
}
