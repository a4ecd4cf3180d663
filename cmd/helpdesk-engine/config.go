// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/helpdesk-engine/internal/keywords"
	"github.com/pdiddy/helpdesk-engine/internal/search"
	"github.com/pdiddy/helpdesk-engine/internal/secrets"
	"github.com/pdiddy/helpdesk-engine/internal/store"
	"github.com/pdiddy/helpdesk-engine/internal/syncer"
	"github.com/pdiddy/helpdesk-engine/internal/upstream"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

const defaultStorePath = "helpdesk.db"

// engineConfig assembles the full configuration from the config file,
// environment, and loaded secrets. Secrets win over config-file keys.
func engineConfig(cmd *cobra.Command) types.EngineConfig {
	cfg := types.EngineConfig{
		Upstream: types.UpstreamConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("upstream.timeout"),
				UserAgent: viper.GetString("upstream.user_agent"),
			},
			BaseURL:          viper.GetString("upstream.base_url"),
			APIKey:           loadedSecrets.Get(secrets.KeyKB, viper.GetString("upstream.api_key")),
			PageSize:         viper.GetInt("upstream.page_size"),
			MaxPages:         viper.GetInt("upstream.max_pages"),
			ArticleURLFormat: viper.GetString("upstream.article_url_format"),
		},
		Model: types.ModelConfig{
			BaseURL: viper.GetString("model.base_url"),
			APIKey:  loadedSecrets.Get(secrets.KeyModel, viper.GetString("model.api_key")),
			Model:   viper.GetString("model.model"),
			Timeout: viper.GetDuration("model.timeout"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Sync: types.SyncConfig{
			Interval:      viper.GetDuration("sync.interval"),
			BackfillRate:  viper.GetFloat64("sync.backfill_rate"),
			BackfillBurst: viper.GetInt("sync.backfill_burst"),
		},
		Search: types.SearchConfig{
			MaxResults:     viper.GetInt("search.max_results"),
			MaxChatResults: viper.GetInt("search.max_chat_results"),
			MinChatScore:   viper.GetFloat64("search.min_chat_score"),
		},
		Server: types.ServerConfig{
			Addr:  viper.GetString("server.addr"),
			Debug: viper.GetBool("server.debug"),
		},
	}

	// The --db flag overrides the configured store path. Without flag or
	// config the CLI defaults to a local file; an explicitly empty config
	// value keeps the in-memory store.
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	} else if !viper.IsSet("store.path") {
		cfg.Store.Path = defaultStorePath
	}

	return cfg
}

// openRepo opens the configured article store.
func openRepo(cfg types.StoreConfig) (store.Repository, error) {
	if cfg.Path == "" {
		return store.NewMemory(), nil
	}
	return store.NewSQLite(cfg.Path)
}

// buildSyncer wires the fetch/extract/store pipeline behind a Syncer.
func buildSyncer(cfg types.EngineConfig, repo store.Repository) (*syncer.Syncer, error) {
	client := upstream.NewClient(cfg.Upstream)
	if !client.Configured() {
		return nil, fmt.Errorf("upstream not configured: set upstream.base_url and provide %s", secrets.KeyKB)
	}
	if !keywords.Configured(cfg.Model) {
		fmt.Fprintln(os.Stderr, "warning: model not configured, keyword backfill uses the local fallback")
	}
	return syncer.New(client, repo, keywords.NewExtractor(cfg.Model), cfg.Sync), nil
}

// buildSearch wires the search engine over an open repository.
func buildSearch(cfg types.EngineConfig, repo store.Repository) *search.Engine {
	return search.NewEngine(repo, keywords.NewExtractor(cfg.Model), cfg.Search)
}
