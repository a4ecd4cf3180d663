// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

const defaultInterval = 24 * time.Hour

// Scheduler runs Sync at a fixed interval until its context is cancelled.
// The single-flight guard inside Syncer keeps a scheduled run and a
// manual trigger from interleaving writes.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
}

// NewScheduler wires a Scheduler. An interval of zero or less selects the
// default (24h).
func NewScheduler(s *Syncer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{syncer: s, interval: interval}
}

// Run performs an immediate sync, then one every interval, until ctx is
// cancelled. A run that reports ErrSyncInProgress (a manual trigger beat
// the ticker) is skipped, not an error.
func (sc *Scheduler) Run(ctx context.Context, w io.Writer) {
	sc.once(ctx, w)

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sc.once(ctx, w)
		}
	}
}

func (sc *Scheduler) once(ctx context.Context, w io.Writer) {
	stats, err := sc.syncer.Sync(ctx, w)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		fmt.Fprintln(w, "scheduled sync skipped: a run is already active")
	case err != nil:
		fmt.Fprintf(w, "scheduled sync failed: %v\n", err)
	case stats.HasErrors():
		fmt.Fprintf(w, "scheduled sync completed with %d error(s)\n", len(stats.Errors))
	}
}
