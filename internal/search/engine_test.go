// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
	"github.com/pdiddy/helpdesk-engine/internal/store"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// failingRepo wraps a Repository and fails FindByTerms a set number of times.
type failingRepo struct {
	store.Repository
	failures int
}

func (f *failingRepo) FindByTerms(ctx context.Context, terms []string) ([]types.Article, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("store unavailable")
	}
	return f.Repository.FindByTerms(ctx, terms)
}

func seededRepo(t *testing.T) *store.Memory {
	t.Helper()
	repo := store.NewMemory()
	ctx := context.Background()

	vpn := types.Article{
		ExternalID: "A",
		Title:      "VPN disconnects on wifi",
		Content:    "The VPN client drops its tunnel when the laptop switches networks.",
		URL:        "https://kb.example.com/articles/A",
		Keywords:   []string{"vpn", "disconnect"},
		UpdatedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		Status:     types.StatusPublished,
	}
	printer := types.Article{
		ExternalID: "B",
		Title:      "Printer offline error",
		Content:    "The print spooler marks the device offline after sleep.",
		URL:        "https://kb.example.com/articles/B",
		Keywords:   []string{"printer", "offline"},
		UpdatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		Status:     types.StatusPublished,
	}
	for _, a := range []types.Article{vpn, printer} {
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	return repo
}

func testEngine(repo store.Repository) *Engine {
	return NewEngine(repo, keywords.Fallback{}, types.SearchConfig{})
}

func TestSearch_RanksRelevantFirst(t *testing.T) {
	e := testEngine(seededRepo(t))

	results, err := e.Search(context.Background(), "my vpn keeps disconnecting")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ExternalID != "A" {
		t.Errorf("top result = %s, want A", results[0].ExternalID)
	}
	for _, r := range results {
		if r.ExternalID == "B" {
			t.Error("printer article must not match a VPN query")
		}
	}
	if results[0].Score <= 0 {
		t.Errorf("score = %f, want > 0", results[0].Score)
	}
	if results[0].URL == "" || results[0].Excerpt == "" {
		t.Error("results must carry URL and excerpt for rendering")
	}
}

func TestSearch_OrderedByScoreDescending(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	// A weaker VPN article: term only in content.
	if err := repo.Insert(ctx, types.Article{
		ExternalID: "C",
		Title:      "Laptop battery drain",
		Content:    "Some users report the vpn agent waking the radio.",
		Active:     true,
		Status:     types.StatusPublished,
	}); err != nil {
		t.Fatal(err)
	}

	results, err := testEngine(repo).Search(ctx, "vpn")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results out of order at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestSearch_EqualScoresBreakTiesByFreshness(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	// Identical match profiles, so identical scores; only the update
	// timestamps differ.
	stale := types.Article{
		ExternalID: "old",
		Title:      "VPN drops on wireless networks",
		Content:    "The VPN client drops its tunnel when the laptop roams.",
		UpdatedAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		Status:     types.StatusPublished,
	}
	fresh := stale
	fresh.ExternalID = "new"
	fresh.UpdatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, a := range []types.Article{stale, fresh} {
		if err := repo.Insert(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	results, err := testEngine(repo).Search(ctx, "vpn drops")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("scores differ (%f vs %f), tie-break not exercised", results[0].Score, results[1].Score)
	}
	if results[0].ExternalID != "new" {
		t.Errorf("top result = %s, want the more recently updated article", results[0].ExternalID)
	}
}

func TestSearch_NoMatchIsEmptyNotError(t *testing.T) {
	results, err := testEngine(seededRepo(t)).Search(context.Background(), "quantum flux capacitor")
	if err != nil {
		t.Fatalf("no-match query must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	results, err := testEngine(seededRepo(t)).Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestSearch_NarrowRetryAfterStoreFailure(t *testing.T) {
	repo := &failingRepo{Repository: seededRepo(t), failures: 1}

	results, err := testEngine(repo).Search(context.Background(), "vpn wifi")
	if err != nil {
		t.Fatalf("store failure must degrade, not propagate: %v", err)
	}
	if len(results) == 0 || results[0].ExternalID != "A" {
		t.Errorf("narrow retry should still find A, got %v", results)
	}
}

func TestSearch_PersistentStoreFailureIsEmpty(t *testing.T) {
	repo := &failingRepo{Repository: seededRepo(t), failures: 2}

	results, err := testEngine(repo).Search(context.Background(), "vpn wifi")
	if err != nil {
		t.Fatalf("persistent store failure must degrade to empty: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestSearch_CapsResults(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	for _, id := range []string{"D", "E", "F", "G", "H", "I"} {
		if err := repo.Insert(ctx, types.Article{
			ExternalID: id,
			Title:      "VPN note " + id,
			Content:    "vpn details",
			Active:     true,
			Status:     types.StatusPublished,
		}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := testEngine(repo).Search(ctx, "vpn")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != defaultMaxResults {
		t.Errorf("len(results) = %d, want %d", len(results), defaultMaxResults)
	}
}

func TestSearchChat_RelevanceFloorExcludesWeakMatches(t *testing.T) {
	e := testEngine(seededRepo(t))

	results, err := e.SearchChat(context.Background(), "my vpn keeps disconnecting")
	if err != nil {
		t.Fatalf("SearchChat() error = %v", err)
	}
	if len(results) != 1 || results[0].ExternalID != "A" {
		t.Fatalf("results = %v, want [A]", results)
	}
	if results[0].Score < defaultMinChatScore {
		t.Errorf("score %f below floor %f", results[0].Score, defaultMinChatScore)
	}
}

func TestSearchChat_MatchesPrecomputedKeywords(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	// Token appears only in the keyword list, not title or content.
	if err := repo.Insert(ctx, types.Article{
		ExternalID: "K",
		Title:      "Remote access client crashes",
		Content:    "The client exits at startup.",
		Keywords:   []string{"anyconnect", "crash loop", "remote access"},
		Active:     true,
		Status:     types.StatusPublished,
	}); err != nil {
		t.Fatal(err)
	}

	results, err := testEngine(repo).SearchChat(ctx, "anyconnect client broken")
	if err != nil {
		t.Fatalf("SearchChat() error = %v", err)
	}
	if len(results) != 1 || results[0].ExternalID != "K" {
		t.Errorf("results = %v, want [K]", results)
	}
}

func TestSearchChat_StopWordOnlyMessage(t *testing.T) {
	results, err := testEngine(seededRepo(t)).SearchChat(context.Background(), "can you help me")
	if err != nil {
		t.Fatalf("SearchChat() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestSearchChat_CapsAtThree(t *testing.T) {
	repo := seededRepo(t)
	ctx := context.Background()
	for _, id := range []string{"D", "E", "F"} {
		if err := repo.Insert(ctx, types.Article{
			ExternalID: id,
			Title:      "VPN disconnect note " + id,
			Content:    "vpn disconnecting details",
			Keywords:   []string{"vpn", "disconnecting"},
			Active:     true,
			Status:     types.StatusPublished,
		}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := testEngine(repo).SearchChat(ctx, "vpn disconnecting")
	if err != nil {
		t.Fatalf("SearchChat() error = %v", err)
	}
	if len(results) != defaultMaxChatResults {
		t.Errorf("len(results) = %d, want %d", len(results), defaultMaxChatResults)
	}
}
