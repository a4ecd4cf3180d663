// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "helpdesk-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// UpstreamConfig holds settings for the upstream knowledge-base API.
type UpstreamConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the articles endpoint of the upstream KB API.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates requests to the upstream API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// PageSize is the number of articles requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPages bounds pagination against a runaway upstream (default 20).
	// Hitting the bound is a soft stop, not an error.
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// ArticleURLFormat is the printf format deriving an article's
	// canonical URL from its external ID (one %s verb).
	ArticleURLFormat string `json:"article_url_format" yaml:"article_url_format"`
}

// ModelConfig holds settings for the generative-model service.
type ModelConfig struct {
	// BaseURL overrides the model API endpoint. Empty uses the provider
	// default; tests point it at a local server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates requests to the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// Timeout bounds a single model call. A timeout triggers the local
	// fallback path rather than blocking the caller (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the article store.
type StoreConfig struct {
	// Path is the SQLite database file. Empty selects the in-memory
	// store, the deployment mode without durable storage.
	Path string `json:"path" yaml:"path"`
}

// SyncConfig holds settings for the synchronizer.
type SyncConfig struct {
	// Interval is the scheduled sync period (default 24h).
	Interval time.Duration `json:"interval" yaml:"interval"`

	// BackfillRate is the sustained keyword-backfill model-call rate in
	// calls per second (default 0.5). Sized to the model quota.
	BackfillRate float64 `json:"backfill_rate" yaml:"backfill_rate"`

	// BackfillBurst is the backfill token-bucket burst (default 1).
	BackfillBurst int `json:"backfill_burst" yaml:"backfill_burst"`
}

// SearchConfig holds settings for the search engine.
type SearchConfig struct {
	// MaxResults caps the broad keyword-path result count (default 5).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxChatResults caps the strict chat-path result count (default 3).
	MaxChatResults int `json:"max_chat_results" yaml:"max_chat_results"`

	// MinChatScore is the relevance floor for the strict chat path
	// (default 3.0). Candidates scoring below it are discarded.
	MinChatScore float64 `json:"min_chat_score" yaml:"min_chat_score"`
}

// ServerConfig holds settings for the admin/test HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8085").
	Addr string `json:"addr" yaml:"addr"`

	// Debug enables gin debug mode and request logging.
	Debug bool `json:"debug" yaml:"debug"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`
	Model    ModelConfig    `json:"model" yaml:"model"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Sync     SyncConfig     `json:"sync" yaml:"sync"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
