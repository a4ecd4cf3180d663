// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the local knowledge-base article mirror.
//
// Repository is the single write path for articles: the synchronizer and
// the keyword backfill are its only writers, search is read-only. Two
// implementations exist: SQLite for durable deployments and Memory for
// tests and the storage-free deployment mode.
package store

import (
	"context"
	"errors"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// ErrNotFound is returned when no article carries the requested external ID.
var ErrNotFound = errors.New("article not found")

// Repository is the article store contract.
type Repository interface {
	// GetByExternalID returns the article with the given upstream ID,
	// or ErrNotFound.
	GetByExternalID(ctx context.Context, externalID string) (types.Article, error)

	// List returns all articles, restricted to active ones when
	// activeOnly is set. Order is unspecified.
	List(ctx context.Context, activeOnly bool) ([]types.Article, error)

	// ListIDs returns the set of stored external IDs.
	ListIDs(ctx context.Context) (map[string]bool, error)

	// Insert stores a new article row.
	Insert(ctx context.Context, a types.Article) error

	// Update rewrites an existing article's upstream-owned fields:
	// title, content, URL, tags, visibility, status, and timestamp.
	// The stored keyword list is never touched; only SetKeywords
	// writes it.
	Update(ctx context.Context, a types.Article) error

	// SetKeywords replaces the keyword list of one article.
	SetKeywords(ctx context.Context, externalID string, keywords []string) error

	// Delete removes the article row. Deleting an absent ID is not an
	// error.
	Delete(ctx context.Context, externalID string) error

	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)

	// FindByTerms returns active articles whose title or content
	// contains any of the terms, case-insensitively. An empty term list
	// yields an empty result.
	FindByTerms(ctx context.Context, terms []string) ([]types.Article, error)

	// Close releases underlying resources.
	Close() error
}
