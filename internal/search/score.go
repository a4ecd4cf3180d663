// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// Keyword-path weights. Title matches outrank content matches, primary
// terms outrank secondary ones.
const (
	titlePrimaryWeight     = 10.0
	contentPrimaryWeight   = 5.0
	titleSecondaryWeight   = 3.0
	contentSecondaryWeight = 1.5

	// rankDecay reduces a keyword's weight per rank position: earlier
	// keywords are more specific and score higher.
	rankDecay = 0.1
)

// Token-path weights. Matching every term in the title or in the
// precomputed keyword list far outranks partial matches.
const (
	allTermsTitleBonus    = 10.0
	allTermsKeywordsBonus = 8.0
	termTitleWeight       = 3.0
	termKeywordsWeight    = 2.0
	termContentWeight     = 1.0
)

// ScoreKeywords is the broad-path relevance score of one candidate
// against extracted query keywords. Pure function: no storage or model
// access, so properties hold under direct testing.
func ScoreKeywords(kw types.SearchKeywords, a types.Article) float64 {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)

	var score float64
	for rank, term := range kw.Primary {
		decay := rankFactor(rank)
		if strings.Contains(title, term) {
			score += titlePrimaryWeight * decay
		}
		if strings.Contains(content, term) {
			score += contentPrimaryWeight * decay
		}
	}
	for rank, term := range kw.Secondary {
		decay := rankFactor(rank)
		if strings.Contains(title, term) {
			score += titleSecondaryWeight * decay
		}
		if strings.Contains(content, term) {
			score += contentSecondaryWeight * decay
		}
	}
	return score
}

// rankFactor decays linearly per keyword position, floored at 0.1 so a
// late keyword still contributes.
func rankFactor(rank int) float64 {
	f := 1.0 - float64(rank)*rankDecay
	if f < 0.1 {
		f = 0.1
	}
	return f
}

// ScoreTokens is the strict chat-path relevance score of one candidate
// against raw message tokens. Pure function.
func ScoreTokens(tokens []string, a types.Article) float64 {
	if len(tokens) == 0 {
		return 0
	}

	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)
	kwJoined := strings.ToLower(strings.Join(a.Keywords, " "))

	var score float64
	titleHits, kwHits := 0, 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += termTitleWeight
			titleHits++
		}
		if strings.Contains(kwJoined, tok) {
			score += termKeywordsWeight
			kwHits++
		}
		if strings.Contains(content, tok) {
			score += termContentWeight
		}
	}

	if titleHits == len(tokens) {
		score += allTermsTitleBonus
	}
	if kwHits == len(tokens) {
		score += allTermsKeywordsBonus
	}
	return score
}
