// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the engine over HTTP: health and status probes,
// a manual sync trigger, and the two search paths.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/helpdesk-engine/internal/search"
	"github.com/pdiddy/helpdesk-engine/internal/store"
	"github.com/pdiddy/helpdesk-engine/internal/syncer"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// Deps are the wired components the server fronts. The configured flags
// feed the status endpoint; search and sync degrade on their own when the
// corresponding upstream is absent.
type Deps struct {
	Repo               store.Repository
	Syncer             *syncer.Syncer
	Search             *search.Engine
	UpstreamConfigured bool
	ModelConfigured    bool
}

// Server wraps a gin engine around the wired components.
type Server struct {
	cfg    types.ServerConfig
	deps   Deps
	engine *gin.Engine
	logw   io.Writer
}

// New builds the server and registers its routes. Sync progress lines go
// to logw.
func New(cfg types.ServerConfig, deps Deps, logw io.Writer) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		engine: gin.New(),
		logw:   logw,
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.POST("/sync", s.handleSync)
		api.GET("/search", s.handleSearch)
		api.GET("/chat-search", s.handleChatSearch)
		api.GET("/articles", s.handleArticles)
	}
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = ":8085"
	}
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	fmt.Fprintf(s.logw, "listening on %s\n", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("serving HTTP: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	count, err := s.deps.Repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upstream_configured": s.deps.UpstreamConfigured,
		"model_configured":    s.deps.ModelConfigured,
		"articles":            count,
	})
}

// handleSync runs a reconciliation inline and returns its stats. A second
// trigger while one is active gets a conflict instead of queueing.
func (s *Server) handleSync(c *gin.Context) {
	stats, err := s.deps.Syncer.Sync(c.Request.Context(), s.logw)
	if errors.Is(err, syncer.ErrSyncInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	results, err := s.deps.Search.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleChatSearch(c *gin.Context) {
	message := c.Query("q")
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	results, err := s.deps.Search.SearchChat(c.Request.Context(), message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   message,
		"count":   len(results),
		"results": results,
	})
}

// articleSummary is the list projection; content stays out of the listing.
type articleSummary struct {
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *Server) handleArticles(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	articles, err := s.deps.Repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]articleSummary, 0, len(articles))
	for _, a := range articles {
		summaries = append(summaries, articleSummary{
			ExternalID: a.ExternalID,
			Title:      a.Title,
			URL:        a.URL,
			Keywords:   a.Keywords,
			UpdatedAt:  a.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(summaries),
		"articles": summaries,
	})
}
