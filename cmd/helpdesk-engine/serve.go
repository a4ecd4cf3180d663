// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
	"github.com/pdiddy/helpdesk-engine/internal/server"
	"github.com/pdiddy/helpdesk-engine/internal/syncer"
	"github.com/pdiddy/helpdesk-engine/internal/upstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with scheduled background sync",
	Long: `Serve exposes the engine over HTTP: health and status probes, a manual
sync trigger, both search paths, and an article listing. A background
scheduler runs a full sync immediately and then on the configured
interval. SIGINT or SIGTERM drains in-flight requests and stops.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8085)")
	serveCmd.Flags().Bool("no-sync", false, "disable the background sync scheduler")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := engineConfig(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	repo, err := openRepo(cfg.Store)
	if err != nil {
		return err
	}
	defer repo.Close()

	s, err := buildSyncer(cfg, repo)
	if err != nil {
		return err
	}
	client := upstream.NewClient(cfg.Upstream)

	srv := server.New(cfg.Server, server.Deps{
		Repo:               repo,
		Syncer:             s,
		Search:             buildSearch(cfg, repo),
		UpstreamConfigured: client.Configured(),
		ModelConfigured:    keywords.Configured(cfg.Model),
	}, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if noSync, _ := cmd.Flags().GetBool("no-sync"); !noSync {
		go syncer.NewScheduler(s, cfg.Sync.Interval).Run(ctx, os.Stdout)
	}

	return srv.Run(ctx)
}
