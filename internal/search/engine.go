// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns user queries into ranked, size-bounded article
// lists.
//
// Two paths serve two precision needs. Search is the broad keyword path
// behind the admin/test surface: model-extracted query keywords, substring
// candidates, tiered scoring, top five. SearchChat is the strict path
// behind the live chat turn: raw-message tokens, a relevance floor, top
// three. The divergence is intentional; callers depend on the distinct
// precision/recall tradeoffs.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
	"github.com/pdiddy/helpdesk-engine/internal/store"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

const (
	defaultMaxResults     = 5
	defaultMaxChatResults = 3
	defaultMinChatScore   = 3.0

	excerptLen = 200
)

// Engine ranks stored articles against user queries. Read-only against
// the store; safe for unbounded concurrent use.
type Engine struct {
	repo      store.Repository
	extractor keywords.Extractor
	cfg       types.SearchConfig
}

// NewEngine wires the search engine.
func NewEngine(repo store.Repository, extractor keywords.Extractor, cfg types.SearchConfig) *Engine {
	return &Engine{repo: repo, extractor: extractor, cfg: cfg}
}

// Search is the broad keyword path. An empty result is a normal outcome;
// the only errors returned are extractor-and-store double failures where
// no degraded answer exists.
func (e *Engine) Search(ctx context.Context, query string) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	// Extractor implementations degrade internally; if one still errors,
	// the deterministic fallback is the answer of last resort.
	kw, err := e.extractor.ForQuery(ctx, query)
	if err != nil {
		kw, _ = keywords.Fallback{}.ForQuery(ctx, query)
	}
	if kw.IsEmpty() {
		return nil, nil
	}

	// A store failure or an empty candidate set degrades to a narrower
	// single-keyword retry, then to an empty result. "No relevant
	// articles" is a normal, renderable outcome, never an error.
	candidates, err := e.repo.FindByTerms(ctx, kw.Terms())
	if err != nil || len(candidates) == 0 {
		if len(kw.Primary) == 0 {
			return nil, nil
		}
		candidates, err = e.repo.FindByTerms(ctx, kw.Primary[:1])
		if err != nil || len(candidates) == 0 {
			return nil, nil
		}
	}

	results := rank(candidates, func(a types.Article) float64 {
		return ScoreKeywords(kw, a)
	}, 0)

	max := e.cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}
	return top(results, max), nil
}

// SearchChat is the strict chat-turn path: token matching against title,
// content, and the precomputed keyword list, with a relevance floor.
func (e *Engine) SearchChat(ctx context.Context, message string) ([]types.SearchResult, error) {
	tokens := keywords.Tokenize(message)
	if len(tokens) == 0 {
		return nil, nil
	}

	// Token candidates also come from the keyword column, which the
	// substring query does not cover, so scan active articles.
	articles, err := e.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}

	candidates := articles[:0:0]
	for _, a := range articles {
		if matchesAnyToken(tokens, a) {
			candidates = append(candidates, a)
		}
	}

	floor := e.cfg.MinChatScore
	if floor <= 0 {
		floor = defaultMinChatScore
	}
	results := rank(candidates, func(a types.Article) float64 {
		return ScoreTokens(tokens, a)
	}, floor)

	max := e.cfg.MaxChatResults
	if max <= 0 {
		max = defaultMaxChatResults
	}
	return top(results, max), nil
}

// matchesAnyToken reports whether any token appears in the article's
// title, content, or keyword list.
func matchesAnyToken(tokens []string, a types.Article) bool {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)
	kwJoined := strings.ToLower(strings.Join(a.Keywords, " "))
	for _, tok := range tokens {
		if strings.Contains(title, tok) ||
			strings.Contains(content, tok) ||
			strings.Contains(kwJoined, tok) {
			return true
		}
	}
	return false
}

// rank scores candidates, drops those at or below the floor, and orders
// by score descending with most-recent lastUpdated breaking ties.
func rank(candidates []types.Article, score func(types.Article) float64, floor float64) []types.SearchResult {
	var results []types.SearchResult
	for _, a := range candidates {
		s := score(a)
		if s <= 0 || s < floor {
			continue
		}
		results = append(results, types.SearchResult{
			ExternalID: a.ExternalID,
			Title:      a.Title,
			URL:        a.URL,
			Excerpt:    Excerpt(a.Content),
			Score:      s,
			UpdatedAt:  a.UpdatedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UpdatedAt.After(results[j].UpdatedAt)
	})
	return results
}

func top(results []types.SearchResult, max int) []types.SearchResult {
	if len(results) > max {
		results = results[:max]
	}
	return results
}

// Excerpt strips markup from the article body and returns its leading
// portion for preview rendering.
func Excerpt(content string) string {
	plain := stripMarkup(content)
	if len(plain) > excerptLen {
		end := excerptLen
		for end > 0 && !utf8.RuneStart(plain[end]) {
			end--
		}
		cut := plain[:end]
		if i := strings.LastIndexByte(cut, ' '); i > excerptLen/2 {
			cut = cut[:i]
		}
		return cut + "..."
	}
	return plain
}

// stripMarkup removes HTML tags and collapses whitespace. Good enough for
// preview lines; not a sanitizer.
func stripMarkup(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
