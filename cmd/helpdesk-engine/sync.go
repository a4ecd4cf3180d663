// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the upstream knowledge base and reconcile the local mirror",
	Long: `Sync fetches every published public article from the upstream knowledge
base, inserts new articles, updates changed ones, deletes vanished ones,
and backfills search keywords for articles that lack them. Precomputed
keywords survive article updates.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)

	repo, err := openRepo(cfg.Store)
	if err != nil {
		return err
	}
	defer repo.Close()

	s, err := buildSyncer(cfg, repo)
	if err != nil {
		return err
	}

	stats, err := s.Sync(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if stats.HasErrors() {
		return fmt.Errorf("sync finished with %d error(s)", len(stats.Errors))
	}
	return nil
}
