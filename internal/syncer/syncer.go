// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syncer reconciles the local article mirror against the upstream
// knowledge base and backfills missing search keywords.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
	"github.com/pdiddy/helpdesk-engine/internal/store"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// ErrSyncInProgress is returned when a run is requested while another is
// active. The admin surface maps it to an "already running" response.
var ErrSyncInProgress = errors.New("sync already in progress")

const (
	defaultBackfillRate  = 0.5
	defaultBackfillBurst = 1
)

// Fetcher pulls the filtered upstream article set.
type Fetcher interface {
	FetchAll(ctx context.Context, w io.Writer) ([]types.Article, error)
}

// Syncer reconciles fetched articles against the store. It is the single
// writer for upstream-owned fields; the keyword backfill inside a run is
// the only keyword writer.
type Syncer struct {
	fetcher   Fetcher
	repo      store.Repository
	extractor keywords.Extractor
	limiter   *rate.Limiter

	// running is the single-flight guard: the scheduled run and manual
	// triggers must not interleave writes.
	running sync.Mutex
}

// New wires a Syncer. The backfill limiter is a token bucket sized to the
// model quota; it replaces a fixed inter-call delay.
func New(fetcher Fetcher, repo store.Repository, extractor keywords.Extractor, cfg types.SyncConfig) *Syncer {
	r := cfg.BackfillRate
	if r <= 0 {
		r = defaultBackfillRate
	}
	burst := cfg.BackfillBurst
	if burst <= 0 {
		burst = defaultBackfillBurst
	}
	return &Syncer{
		fetcher:   fetcher,
		repo:      repo,
		extractor: extractor,
		limiter:   rate.NewLimiter(rate.Limit(r), burst),
	}
}

// Sync runs one reconciliation and returns its stats. If another run is
// active it returns immediately with ErrSyncInProgress; callers decide
// whether to report or retry.
func (s *Syncer) Sync(ctx context.Context, w io.Writer) (types.SyncStats, error) {
	if !s.running.TryLock() {
		return types.SyncStats{}, ErrSyncInProgress
	}
	defer s.running.Unlock()

	return s.run(ctx, w), nil
}

// run executes the reconciliation. Per-article failures are recorded and
// skipped; only a failed fetch or a failed ID enumeration ends the run
// early.
func (s *Syncer) run(ctx context.Context, w io.Writer) types.SyncStats {
	stats := types.SyncStats{StartedAt: time.Now().UTC()}

	upstream, fetchErr := s.fetcher.FetchAll(ctx, w)
	if fetchErr != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("fetch: %v", fetchErr))
		if len(upstream) == 0 {
			fmt.Fprintf(w, "sync aborted: %v\n", fetchErr)
			return stats
		}
		// A partial pull still reconciles what arrived, but deletion
		// below requires a complete view of the upstream set.
		fmt.Fprintf(w, "warning: partial upstream pull (%d articles): %v\n", len(upstream), fetchErr)
	}
	stats.Checked = len(upstream)

	existing, err := s.repo.ListIDs(ctx)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("listing stored IDs: %v", err))
		fmt.Fprintf(w, "sync aborted: %v\n", err)
		return stats
	}

	seen := make(map[string]bool, len(upstream))
	for _, a := range upstream {
		seen[a.ExternalID] = true
		if existing[a.ExternalID] {
			updated, err := s.updateIfChanged(ctx, a)
			if err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", a.ExternalID, err))
				fmt.Fprintf(w, "failed  %s: %v\n", a.ExternalID, err)
				continue
			}
			if updated {
				stats.Updated++
				fmt.Fprintf(w, "updated %s\n", a.ExternalID)
			}
			continue
		}

		a.Keywords = nil
		if err := s.repo.Insert(ctx, a); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", a.ExternalID, err))
			fmt.Fprintf(w, "failed  %s: %v\n", a.ExternalID, err)
			continue
		}
		stats.Added++
		fmt.Fprintf(w, "added   %s\n", a.ExternalID)
	}

	stats.KeywordsGenerated = s.backfill(ctx, w, &stats)

	if fetchErr == nil {
		for id := range existing {
			if seen[id] {
				continue
			}
			if err := s.repo.Delete(ctx, id); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", id, err))
				fmt.Fprintf(w, "failed  %s: %v\n", id, err)
				continue
			}
			stats.Deleted++
			fmt.Fprintf(w, "deleted %s\n", id)
		}
	}

	if total, err := s.repo.Count(ctx); err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("counting articles: %v", err))
	} else {
		stats.TotalArticles = total
	}

	fmt.Fprintf(w, "\nchecked: %d, added: %d, updated: %d, deleted: %d, keywords: %d, total: %d, errors: %d\n",
		stats.Checked, stats.Added, stats.Updated, stats.Deleted,
		stats.KeywordsGenerated, stats.TotalArticles, len(stats.Errors))

	return stats
}

// updateIfChanged diffs the upstream article against the stored row and
// rewrites upstream-owned fields on any divergence. The store's Update
// preserves the keyword list.
func (s *Syncer) updateIfChanged(ctx context.Context, a types.Article) (bool, error) {
	stored, err := s.repo.GetByExternalID(ctx, a.ExternalID)
	if err != nil {
		return false, fmt.Errorf("loading stored article: %w", err)
	}

	if stored.Title == a.Title &&
		stored.Content == a.Content &&
		equalTags(stored.Tags, a.Tags) {
		return false, nil
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// backfill extracts keywords for every article that lacks them, throttled
// by the token bucket. Per-article failures are recorded and skipped.
func (s *Syncer) backfill(ctx context.Context, w io.Writer, stats *types.SyncStats) int {
	articles, err := s.repo.List(ctx, false)
	if err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("listing for backfill: %v", err))
		return 0
	}

	generated := 0
	for _, a := range articles {
		if a.HasKeywords() {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("backfill cancelled: %v", err))
			return generated
		}

		kw, err := s.extractor.ForArticle(ctx, a.Title, a.Content)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: extracting keywords: %v", a.ExternalID, err))
			fmt.Fprintf(w, "failed  %s: extracting keywords: %v\n", a.ExternalID, err)
			continue
		}
		if len(kw) == 0 {
			continue
		}

		if err := s.repo.SetKeywords(ctx, a.ExternalID, kw); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: storing keywords: %v", a.ExternalID, err))
			fmt.Fprintf(w, "failed  %s: storing keywords: %v\n", a.ExternalID, err)
			continue
		}
		generated++
		fmt.Fprintf(w, "keywords %s (%d)\n", a.ExternalID, len(kw))
	}
	return generated
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
