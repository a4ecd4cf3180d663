// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords derives search keywords from articles and user queries.
//
// Extraction is a capability with two implementations: ModelExtractor
// calls the generative-model service, Fallback derives keywords locally
// and deterministically. ModelExtractor wraps a Fallback, so every
// caller-visible path succeeds even with the model unavailable.
package keywords

import (
	"context"
	"strings"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// MaxArticleKeywords caps the keyword list stored per article.
const MaxArticleKeywords = 7

// Extractor derives keywords for articles and queries.
type Extractor interface {
	// ForArticle returns 1-7 lowercase search keywords for an article.
	ForArticle(ctx context.Context, title, content string) ([]string, error)

	// ForQuery extracts the searchable intent of one user query.
	ForQuery(ctx context.Context, query string) (types.SearchKeywords, error)
}

// genericTerms is the blocklist of IT-support vocabulary too broad to be
// useful as a search keyword. Matched by substring against candidates.
var genericTerms = []string{
	"help",
	"support",
	"setup",
	"troubleshoot",
	"guide",
	"how to",
	"issue",
	"problem",
	"question",
	"assistance",
	"information",
}

// isGeneric reports whether a candidate keyword contains a blocklisted term.
func isGeneric(keyword string) bool {
	for _, term := range genericTerms {
		if strings.Contains(keyword, term) {
			return true
		}
	}
	return false
}

// filterKeywords lowercases, trims, and post-filters candidate keywords:
// length 3-50, no generic terms, deduplicated, capped at MaxArticleKeywords.
func filterKeywords(candidates []string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, c := range candidates {
		kw := strings.ToLower(strings.TrimSpace(c))
		if len(kw) < 3 || len(kw) > 50 {
			continue
		}
		if isGeneric(kw) || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
		if len(keywords) == MaxArticleKeywords {
			break
		}
	}
	return keywords
}

// stopWords are tokens carrying no search intent, dropped by Tokenize.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "have": true, "has": true, "had": true, "was": true,
	"are": true, "but": true, "not": true, "you": true, "your": true,
	"can": true, "cant": true, "can't": true, "how": true, "what": true,
	"when": true, "where": true, "why": true, "does": true, "doesnt": true,
	"doesn't": true, "will": true, "wont": true, "won't": true, "from": true,
	"its": true, "it's": true, "keeps": true, "keep": true, "gets": true,
	"get": true, "got": true, "need": true, "please": true, "help": true,
	"issue": true, "problem": true, "any": true, "all": true, "out": true,
}

// Tokenize splits free text into lowercase search tokens, dropping stop
// words, tokens of two characters or fewer, and punctuation. The strict
// chat search path and the local fallback share this tokenizer.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})

	var tokens []string
	for _, f := range fields {
		if len(f) <= 2 || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'', r == '-':
		return true
	}
	return false
}
