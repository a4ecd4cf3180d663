// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upstream pulls the knowledge-base article set from the upstream
// API, normalizes records into the Article shape, and filters out entries
// ineligible for ingestion.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/helpdesk-engine/internal/httputil"
	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 20
)

// Client fetches articles from the paginated upstream KB API.
type Client struct {
	HTTP *http.Client
	Cfg  types.UpstreamConfig
}

// NewClient builds a Client with a timeout-bounded HTTP client.
func NewClient(cfg types.UpstreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		Cfg:  cfg,
	}
}

// Configured reports whether the client has the credentials and endpoint
// it needs. Callers use this to pre-empt calls that would fail.
func (c *Client) Configured() bool {
	return c.Cfg.BaseURL != "" && c.Cfg.APIKey != ""
}

// FetchAll pages through the upstream API and returns every quality-passing
// article. Pagination stops on an empty page, on the page ceiling (soft
// stop), or on the first page error. A mid-pagination error does not
// discard pages already gathered: the partial set is returned along with
// the error, and the caller decides whether a partial sync is acceptable.
func (c *Client) FetchAll(ctx context.Context, w io.Writer) ([]types.Article, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("upstream not configured: base URL and API key required")
	}

	pageSize := c.Cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := c.Cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var articles []types.Article
	for page := 1; ; page++ {
		if page > maxPages {
			fmt.Fprintf(w, "warning: page ceiling (%d) reached, returning %d articles gathered so far\n",
				maxPages, len(articles))
			return articles, nil
		}

		records, err := c.fetchPage(ctx, page, pageSize)
		if err != nil {
			return articles, fmt.Errorf("fetching page %d: %w", page, err)
		}
		if len(records) == 0 {
			return articles, nil
		}

		for _, rec := range records {
			a, ok := normalize(rec, c.Cfg.ArticleURLFormat)
			if !ok {
				continue
			}
			if Keep(a) {
				articles = append(articles, a)
			}
		}

		if len(records) < pageSize {
			return articles, nil
		}
	}
}

// fetchPage requests one page and decodes its items array. Missing fields
// decode to zero values; a malformed body is an error.
func (c *Client) fetchPage(ctx context.Context, page, pageSize int) ([]rawArticle, error) {
	params := url.Values{
		"page":     {fmt.Sprintf("%d", page)},
		"per_page": {fmt.Sprintf("%d", pageSize)},
	}
	reqURL := c.Cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Cfg.APIKey)
	if c.Cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.Cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned HTTP %d", resp.StatusCode)
	}

	var body pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing upstream page: %w", err)
	}
	return body.Items, nil
}

// Keep is the quality filter gating ingestion: public, published, and
// non-empty content. Pure function, no I/O.
func Keep(a types.Article) bool {
	return !a.Private &&
		a.Status == types.StatusPublished &&
		strings.TrimSpace(a.Content) != ""
}

// normalize maps an upstream record to the Article shape. Records missing
// an ID, missing content, or carrying only a placeholder title are dropped.
func normalize(rec rawArticle, urlFormat string) (types.Article, bool) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return types.Article{}, false
	}
	title := strings.TrimSpace(rec.Title)
	if title == "" || strings.EqualFold(title, "untitled") {
		return types.Article{}, false
	}
	if strings.TrimSpace(rec.Content) == "" {
		return types.Article{}, false
	}

	a := types.Article{
		ExternalID: id,
		Title:      title,
		Content:    rec.Content,
		URL:        articleURL(urlFormat, id),
		Tags:       parseTags(rec.Tags),
		Active:     true,
		Private:    rec.Private,
		Status:     normalizeStatus(rec.Status),
	}
	if t, ok := parseTimestamp(rec.UpdatedAt); ok {
		a.UpdatedAt = t
	}
	return a, true
}

// articleURL derives the canonical URL deterministically from the ID.
func articleURL(format, id string) string {
	if format == "" {
		return ""
	}
	return fmt.Sprintf(format, url.PathEscape(id))
}

// normalizeStatus lowercases the upstream status code so the quality
// filter compares a single casing.
func normalizeStatus(s string) types.PublicationStatus {
	return types.PublicationStatus(strings.ToLower(strings.TrimSpace(s)))
}

// parseTags accepts the two encodings the upstream emits for tags: a JSON
// array of strings or a single comma-separated string. The result is
// trimmed and deduplicated, preserving first-seen order.
func parseTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var parts []string
	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		parts = asList
	} else {
		var asString string
		if err := json.Unmarshal(raw, &asString); err != nil {
			return nil
		}
		parts = strings.Split(asString, ",")
	}

	seen := make(map[string]bool)
	var tags []string
	for _, p := range parts {
		tag := strings.TrimSpace(p)
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}
	return tags
}

// timestampLayouts lists the formats the upstream has been observed to emit.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Upstream API JSON structures.
type pageResponse struct {
	Items      []rawArticle `json:"items"`
	TotalPages int          `json:"total_pages"`
}

type rawArticle struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Tags      json.RawMessage `json:"tags"`
	UpdatedAt string          `json:"updated_at"`
	Private   bool            `json:"private"`
	Status    string          `json:"status"`
}
