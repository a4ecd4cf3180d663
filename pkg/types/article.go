// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the helpdesk engine:
// the knowledge-base article mirror, synchronization statistics, extracted
// query keywords, and the plain search results handed to callers.
package types

import "time"

// PublicationStatus is the upstream publication state of an article.
type PublicationStatus string

const (
	// StatusPublished marks an article visible to end users upstream.
	StatusPublished PublicationStatus = "published"

	// StatusDraft marks an unpublished upstream article.
	StatusDraft PublicationStatus = "draft"

	// StatusArchived marks an article removed from the upstream portal.
	StatusArchived PublicationStatus = "archived"
)

// Article is one knowledge-base article in the local mirror. The external
// ID is the upstream identity; all reconciliation keys on it.
type Article struct {
	// ExternalID is the stable upstream identifier, unique per article.
	ExternalID string `json:"external_id" yaml:"external_id"`

	// Title is the article title as published upstream.
	Title string `json:"title" yaml:"title"`

	// Content is the raw article body. May contain markup.
	Content string `json:"content" yaml:"content"`

	// URL is the canonical article URL, derived from the external ID.
	URL string `json:"url" yaml:"url"`

	// Tags are free-form upstream labels, trimmed and deduplicated.
	Tags []string `json:"tags" yaml:"tags"`

	// Keywords are search keywords produced by the keyword extractor.
	// Nil until the first backfill pass; never written by a sync update.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// UpdatedAt is the upstream last-modified time. Zero when the
	// upstream record carried no usable timestamp.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Active gates search eligibility. Only active articles are returned
	// by any search path.
	Active bool `json:"active" yaml:"active"`

	// Private mirrors the upstream visibility flag. Private articles are
	// rejected at ingestion and never reach the store.
	Private bool `json:"private" yaml:"private"`

	// Status is the upstream publication status code.
	Status PublicationStatus `json:"status" yaml:"status"`
}

// HasKeywords reports whether the article carries a non-empty keyword list.
func (a Article) HasKeywords() bool {
	return len(a.Keywords) > 0
}

// SyncStats summarizes one synchronization run. Built fresh per run and
// never mutated after return.
type SyncStats struct {
	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Checked counts upstream articles that passed the quality filter.
	Checked int `json:"checked" yaml:"checked"`

	// Added counts articles inserted on first sight.
	Added int `json:"added" yaml:"added"`

	// Updated counts articles whose stored fields diverged from upstream.
	Updated int `json:"updated" yaml:"updated"`

	// Deleted counts articles removed because their ID vanished upstream.
	Deleted int `json:"deleted" yaml:"deleted"`

	// KeywordsGenerated counts articles backfilled with keywords this run.
	KeywordsGenerated int `json:"keywords_generated" yaml:"keywords_generated"`

	// TotalArticles is the store row count after the run.
	TotalArticles int `json:"total_articles" yaml:"total_articles"`

	// Errors lists error messages in occurrence order. A fatal fetch
	// failure appears here and short-circuits the run; per-article
	// failures accumulate without aborting it.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HasErrors reports whether the run recorded any errors.
func (s SyncStats) HasErrors() bool {
	return len(s.Errors) > 0
}

// SearchKeywords is the extracted intent of one user query. Ephemeral;
// never persisted.
type SearchKeywords struct {
	// Primary terms carry the query's core intent, most specific first.
	Primary []string `json:"primary" yaml:"primary"`

	// Secondary terms broaden the match set, most specific first.
	Secondary []string `json:"secondary" yaml:"secondary"`

	// Context is a short free-text summary of what the user is after.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// IsEmpty reports whether extraction produced no usable terms.
func (k SearchKeywords) IsEmpty() bool {
	return len(k.Primary) == 0 && len(k.Secondary) == 0
}

// Terms returns primary then secondary terms as one ordered list.
func (k SearchKeywords) Terms() []string {
	terms := make([]string, 0, len(k.Primary)+len(k.Secondary))
	terms = append(terms, k.Primary...)
	terms = append(terms, k.Secondary...)
	return terms
}

// SearchResult is one ranked article handed back to callers. Plain data
// only: the chat-turn handler renders it, the admin surface serializes it.
type SearchResult struct {
	// ExternalID identifies the matched article.
	ExternalID string `json:"external_id" yaml:"external_id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical article URL.
	URL string `json:"url" yaml:"url"`

	// Excerpt is the leading portion of the article body with markup
	// stripped, for rendering a preview line.
	Excerpt string `json:"excerpt" yaml:"excerpt"`

	// Score is the relevance score that ranked this result.
	Score float64 `json:"score" yaml:"score"`

	// UpdatedAt is the article's upstream last-modified time.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
