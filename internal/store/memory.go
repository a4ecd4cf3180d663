// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"strings"
	"sync"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// Memory is the in-memory Repository used by tests and by deployments
// that run without durable storage. All methods are safe for concurrent
// use; articles are copied on the way in and out so callers never share
// slices with the store.
type Memory struct {
	mu       sync.RWMutex
	articles map[string]types.Article
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{articles: make(map[string]types.Article)}
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

// GetByExternalID returns one article or ErrNotFound.
func (m *Memory) GetByExternalID(_ context.Context, externalID string) (types.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[externalID]
	if !ok {
		return types.Article{}, ErrNotFound
	}
	return copyArticle(a), nil
}

// List returns all articles, optionally only active ones.
func (m *Memory) List(_ context.Context, activeOnly bool) ([]types.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var articles []types.Article
	for _, a := range m.articles {
		if activeOnly && !a.Active {
			continue
		}
		articles = append(articles, copyArticle(a))
	}
	return articles, nil
}

// ListIDs returns the set of stored external IDs.
func (m *Memory) ListIDs(_ context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make(map[string]bool, len(m.articles))
	for id := range m.articles {
		ids[id] = true
	}
	return ids, nil
}

// Insert stores a new article.
func (m *Memory) Insert(_ context.Context, a types.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.articles[a.ExternalID] = copyArticle(a)
	return nil
}

// Update rewrites upstream-owned fields, preserving stored keywords.
func (m *Memory) Update(_ context.Context, a types.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.articles[a.ExternalID]
	if !ok {
		return ErrNotFound
	}
	updated := copyArticle(a)
	updated.Keywords = existing.Keywords
	m.articles[a.ExternalID] = updated
	return nil
}

// SetKeywords replaces one article's keyword list.
func (m *Memory) SetKeywords(_ context.Context, externalID string, keywords []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[externalID]
	if !ok {
		return ErrNotFound
	}
	a.Keywords = append([]string(nil), keywords...)
	m.articles[externalID] = a
	return nil
}

// Delete removes the article. A missing ID is not an error.
func (m *Memory) Delete(_ context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.articles, externalID)
	return nil
}

// Count returns the number of stored articles.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.articles), nil
}

// FindByTerms returns active articles whose title or content contains any
// term, case-insensitively.
func (m *Memory) FindByTerms(_ context.Context, terms []string) ([]types.Article, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var articles []types.Article
	for _, a := range m.articles {
		if !a.Active {
			continue
		}
		title := strings.ToLower(a.Title)
		content := strings.ToLower(a.Content)
		for _, term := range terms {
			t := strings.ToLower(term)
			if t == "" {
				continue
			}
			if strings.Contains(title, t) || strings.Contains(content, t) {
				articles = append(articles, copyArticle(a))
				break
			}
		}
	}
	return articles, nil
}

func copyArticle(a types.Article) types.Article {
	a.Tags = append([]string(nil), a.Tags...)
	if a.Keywords != nil {
		a.Keywords = append([]string(nil), a.Keywords...)
	}
	return a
}
