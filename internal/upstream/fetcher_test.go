// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// testClient points a Client at an httptest server.
func testClient(ts *httptest.Server, pageSize, maxPages int) *Client {
	c := NewClient(types.UpstreamConfig{
		BaseURL:          ts.URL,
		APIKey:           "test-key",
		PageSize:         pageSize,
		MaxPages:         maxPages,
		ArticleURLFormat: "https://kb.example.com/articles/%s",
	})
	c.HTTP = ts.Client()
	return c
}

// pageItem builds a publishable upstream record.
func pageItem(id string) map[string]any {
	return map[string]any{
		"id":         id,
		"title":      "Article " + id,
		"content":    "Body of article " + id,
		"tags":       []string{"vpn"},
		"updated_at": "2026-02-01T10:00:00Z",
		"private":    false,
		"status":     "published",
	}
}

func servePages(t *testing.T, pages [][]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var items []map[string]any
		if page >= 1 && page <= len(pages) {
			items = pages[page-1]
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items":       items,
			"total_pages": len(pages),
		})
	}))
}

func TestFetchAll_SinglePage(t *testing.T) {
	ts := servePages(t, [][]map[string]any{
		{pageItem("a1"), pageItem("a2")},
	})
	defer ts.Close()

	articles, err := testClient(ts, 10, 20).FetchAll(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}
	if articles[0].ExternalID != "a1" {
		t.Errorf("articles[0].ExternalID = %q, want a1", articles[0].ExternalID)
	}
	if articles[0].URL != "https://kb.example.com/articles/a1" {
		t.Errorf("articles[0].URL = %q", articles[0].URL)
	}
	if !articles[0].Active {
		t.Error("normalized article should be active")
	}
}

func TestFetchAll_PaginatesUntilShortPage(t *testing.T) {
	ts := servePages(t, [][]map[string]any{
		{pageItem("a1"), pageItem("a2")},
		{pageItem("a3"), pageItem("a4")},
		{pageItem("a5")},
	})
	defer ts.Close()

	articles, err := testClient(ts, 2, 20).FetchAll(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(articles) != 5 {
		t.Errorf("len(articles) = %d, want 5", len(articles))
	}
}

func TestFetchAll_PageCeilingSoftStop(t *testing.T) {
	// Every page is full, so only the ceiling stops pagination.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{pageItem("p" + page)},
		})
	}))
	defer ts.Close()

	articles, err := testClient(ts, 1, 3).FetchAll(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("ceiling must be a soft stop, got error %v", err)
	}
	if len(articles) != 3 {
		t.Errorf("len(articles) = %d, want 3", len(articles))
	}
}

func TestFetchAll_MidPaginationErrorReturnsPartial(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{pageItem("a1"), pageItem("a2")},
		})
	}))
	defer ts.Close()

	articles, err := testClient(ts, 2, 20).FetchAll(context.Background(), io.Discard)
	if err == nil {
		t.Fatal("expected error from failing page")
	}
	if len(articles) != 2 {
		t.Errorf("partial results lost: len(articles) = %d, want 2", len(articles))
	}
}

func TestFetchAll_NotConfigured(t *testing.T) {
	c := NewClient(types.UpstreamConfig{})
	if c.Configured() {
		t.Error("Configured() = true for empty config")
	}
	if _, err := c.FetchAll(context.Background(), io.Discard); err == nil {
		t.Error("expected error for unconfigured client")
	}
}

func TestFetchAll_DropsIneligibleRecords(t *testing.T) {
	private := pageItem("priv")
	private["private"] = true
	draft := pageItem("draft")
	draft["status"] = "draft"
	empty := pageItem("empty")
	empty["content"] = "   "
	noID := pageItem("")
	placeholder := pageItem("ph")
	placeholder["title"] = "Untitled"

	ts := servePages(t, [][]map[string]any{
		{pageItem("keep"), private, draft, empty, noID, placeholder},
	})
	defer ts.Close()

	articles, err := testClient(ts, 10, 20).FetchAll(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(articles) != 1 || articles[0].ExternalID != "keep" {
		t.Errorf("quality filter failed: got %+v", articles)
	}
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name    string
		article types.Article
		want    bool
	}{
		{"published public", types.Article{Status: types.StatusPublished, Content: "body"}, true},
		{"private", types.Article{Status: types.StatusPublished, Content: "body", Private: true}, false},
		{"draft", types.Article{Status: types.StatusDraft, Content: "body"}, false},
		{"archived", types.Article{Status: types.StatusArchived, Content: "body"}, false},
		{"whitespace content", types.Article{Status: types.StatusPublished, Content: " \n\t"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keep(tt.article); got != tt.want {
				t.Errorf("Keep() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["vpn","wifi"]`, []string{"vpn", "wifi"}},
		{"comma string", `"vpn, wifi ,vpn"`, []string{"vpn", "wifi"}},
		{"dedup case-insensitive", `["VPN","vpn"]`, []string{"VPN"}},
		{"empty entries dropped", `" , vpn ,"`, []string{"vpn"}},
		{"malformed", `12`, nil},
		{"absent", ``, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTags(json.RawMessage(tt.raw))
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("parseTags(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, ok := parseTimestamp("2026-02-01 10:30:00")
	if !ok {
		t.Fatal("parseTimestamp failed for space-separated layout")
	}
	want := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTimestamp = %v, want %v", got, want)
	}

	if _, ok := parseTimestamp("not a date"); ok {
		t.Error("parseTimestamp accepted garbage")
	}
	if _, ok := parseTimestamp(""); ok {
		t.Error("parseTimestamp accepted empty string")
	}
}
