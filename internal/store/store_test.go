// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// repositories runs the contract tests against both implementations.
func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "articles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Repository{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func sampleArticle(id string) types.Article {
	return types.Article{
		ExternalID: id,
		Title:      "VPN disconnects on wifi",
		Content:    "The VPN client drops its tunnel when switching networks.",
		URL:        "https://kb.example.com/articles/" + id,
		Tags:       []string{"vpn", "network"},
		UpdatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Active:     true,
		Status:     types.StatusPublished,
	}
}

func TestRepository_InsertAndGet(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))

			got, err := repo.GetByExternalID(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, "VPN disconnects on wifi", got.Title)
			assert.Equal(t, []string{"vpn", "network"}, got.Tags)
			assert.Nil(t, got.Keywords, "keywords start unset")
			assert.True(t, got.UpdatedAt.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))

			_, err = repo.GetByExternalID(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRepository_UpdatePreservesKeywords(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))
			require.NoError(t, repo.SetKeywords(ctx, "a1", []string{"vpn tunnel", "wifi handoff"}))

			changed := sampleArticle("a1")
			changed.Title = "VPN drops on wireless"
			changed.Keywords = []string{"should", "be", "ignored"}
			require.NoError(t, repo.Update(ctx, changed))

			got, err := repo.GetByExternalID(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, "VPN drops on wireless", got.Title)
			assert.Equal(t, []string{"vpn tunnel", "wifi handoff"}, got.Keywords,
				"sync update must not clobber extractor keywords")
		})
	}
}

func TestRepository_UpdateMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.Update(context.Background(), sampleArticle("ghost"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRepository_SetKeywords(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))
			require.NoError(t, repo.SetKeywords(ctx, "a1", []string{"vpn"}))

			got, err := repo.GetByExternalID(ctx, "a1")
			require.NoError(t, err)
			assert.Equal(t, []string{"vpn"}, got.Keywords)

			assert.ErrorIs(t, repo.SetKeywords(ctx, "missing", []string{"x"}), ErrNotFound)
		})
	}
}

func TestRepository_DeleteAndCount(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))
			require.NoError(t, repo.Insert(ctx, sampleArticle("a2")))

			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, repo.Delete(ctx, "a1"))
			require.NoError(t, repo.Delete(ctx, "a1"), "double delete is not an error")

			n, err = repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			ids, err := repo.ListIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]bool{"a2": true}, ids)
		})
	}
}

func TestRepository_ListActiveOnly(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))

			inactive := sampleArticle("a2")
			inactive.Active = false
			require.NoError(t, repo.Insert(ctx, inactive))

			all, err := repo.List(ctx, false)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			active, err := repo.List(ctx, true)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, "a1", active[0].ExternalID)
		})
	}
}

func TestRepository_FindByTerms(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Insert(ctx, sampleArticle("a1")))

			printer := sampleArticle("a2")
			printer.Title = "Printer offline error"
			printer.Content = "The print spooler shows the device as offline."
			require.NoError(t, repo.Insert(ctx, printer))

			inactive := sampleArticle("a3")
			inactive.Active = false
			require.NoError(t, repo.Insert(ctx, inactive))

			got, err := repo.FindByTerms(ctx, []string{"VPN"})
			require.NoError(t, err)
			require.Len(t, got, 1, "match is case-insensitive, inactive rows excluded")
			assert.Equal(t, "a1", got[0].ExternalID)

			got, err = repo.FindByTerms(ctx, []string{"spooler", "tunnel"})
			require.NoError(t, err)
			assert.Len(t, got, 2)

			got, err = repo.FindByTerms(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, got)

			got, err = repo.FindByTerms(ctx, []string{"quantum"})
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestSQLite_KeywordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "articles.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, sampleArticle("a1")))
	require.NoError(t, s.SetKeywords(ctx, "a1", []string{"vpn tunnel"}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetByExternalID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"vpn tunnel"}, got.Keywords)
}
