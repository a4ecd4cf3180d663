// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

const (
	// maxContentChars bounds the article body sent to the model.
	maxContentChars = 1500

	defaultModelTimeout = 15 * time.Second
)

const articleSystemPrompt = `You extract search keywords from IT knowledge-base articles.
Return a JSON object: {"keywords": ["...", "..."]}.
Rules: 1 to 7 keywords, lowercase, each 3-50 characters.
Prefer a specific phrase over a single word when the phrase is more precise
(e.g. "vpn tunnel drop" over "vpn").
Never use generic IT-support vocabulary such as "help", "support", "setup",
"troubleshooting", "guide", "issue", "problem".`

const querySystemPrompt = `You extract search intent from an IT-helpdesk user question.
Return a JSON object: {"primary": ["..."], "secondary": ["..."], "context": "..."}.
Primary terms carry the core intent, most specific first; secondary terms
broaden the match; context is a one-sentence summary.
Rules: lowercase terms, no generic IT-support vocabulary such as "help",
"support", "setup", "troubleshooting".`

// Configured reports whether the model dependency has what it needs.
// Callers use this to pre-empt calls that would fail and to report the
// dependency state on the status surface.
func Configured(cfg types.ModelConfig) bool {
	return cfg.APIKey != "" && cfg.Model != ""
}

// NewExtractor selects the extractor implementation by configuration:
// model-backed when the model service is configured, deterministic
// fallback otherwise.
func NewExtractor(cfg types.ModelConfig) Extractor {
	if !Configured(cfg) {
		return Fallback{}
	}
	return NewModelExtractor(cfg)
}

// chatClient is the slice of the OpenAI client the extractor uses. Tests
// substitute a stub instead of running a server.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelExtractor calls the generative-model service, treating it as a
// quality enhancement: any failure degrades to the Fallback result.
type ModelExtractor struct {
	client   chatClient
	model    string
	timeout  time.Duration
	fallback Fallback
}

var _ Extractor = (*ModelExtractor)(nil)

// NewModelExtractor builds an extractor against an OpenAI-compatible
// endpoint. BaseURL is empty for the provider default; tests point it at
// an httptest server.
func NewModelExtractor(cfg types.ModelConfig) *ModelExtractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultModelTimeout
	}

	return &ModelExtractor{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// ForArticle asks the model for article keywords and post-filters the
// result. A failed call, malformed response, or filter-emptied result
// falls back to title tokens.
func (m *ModelExtractor) ForArticle(ctx context.Context, title, content string) ([]string, error) {
	content = truncateRunes(content, maxContentChars)
	user := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, content)

	raw, err := m.complete(ctx, articleSystemPrompt, user)
	if err != nil {
		return m.fallback.ForArticle(ctx, title, content)
	}

	var resp struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return m.fallback.ForArticle(ctx, title, content)
	}

	keywords := filterKeywords(resp.Keywords)
	if len(keywords) == 0 {
		return m.fallback.ForArticle(ctx, title, content)
	}
	return keywords, nil
}

// ForQuery asks the model for the query's primary/secondary terms. Any
// failure falls back to stop-word-filtered tokenization.
func (m *ModelExtractor) ForQuery(ctx context.Context, query string) (types.SearchKeywords, error) {
	raw, err := m.complete(ctx, querySystemPrompt, query)
	if err != nil {
		return m.fallback.ForQuery(ctx, query)
	}

	var resp struct {
		Primary   []string `json:"primary"`
		Secondary []string `json:"secondary"`
		Context   string   `json:"context"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return m.fallback.ForQuery(ctx, query)
	}

	kw := types.SearchKeywords{
		Primary:   lowerTrim(resp.Primary),
		Secondary: lowerTrim(resp.Secondary),
		Context:   strings.TrimSpace(resp.Context),
	}
	if kw.IsEmpty() {
		return m.fallback.ForQuery(ctx, query)
	}
	return kw, nil
}

// complete performs one role-tagged, JSON-mode chat call under the
// configured timeout and returns the message content.
func (m *ModelExtractor) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("model returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func lowerTrim(terms []string) []string {
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// truncateRunes cuts s at max bytes without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
