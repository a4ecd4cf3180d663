// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"context"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

const (
	fallbackTitleWords = 5
	fallbackTierSize   = 3
)

// Fallback derives keywords without any network dependency. It is the
// degraded mode behind ModelExtractor and the whole extractor in
// deployments with no model configured.
type Fallback struct{}

var _ Extractor = Fallback{}

// ForArticle returns the first non-trivial title words, lowercased.
func (Fallback) ForArticle(_ context.Context, title, _ string) ([]string, error) {
	tokens := Tokenize(title)
	if len(tokens) > fallbackTitleWords {
		tokens = tokens[:fallbackTitleWords]
	}
	return tokens, nil
}

// ForQuery tokenizes the raw query: the first three tokens become primary
// terms, the next three secondary.
func (Fallback) ForQuery(_ context.Context, query string) (types.SearchKeywords, error) {
	tokens := Tokenize(query)

	var kw types.SearchKeywords
	for i, tok := range tokens {
		switch {
		case i < fallbackTierSize:
			kw.Primary = append(kw.Primary, tok)
		case i < 2*fallbackTierSize:
			kw.Secondary = append(kw.Secondary, tok)
		default:
			return kw, nil
		}
	}
	return kw, nil
}
