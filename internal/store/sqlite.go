// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/helpdesk-engine/pkg/types"
)

// SQLite is the durable Repository backed by a local SQLite database.
// Every write is a single-row statement, so readers never observe a torn
// row even while a sync is running.
type SQLite struct {
	db *sql.DB
}

var _ Repository = (*SQLite)(nil)

// NewSQLite opens or creates the article database at path and creates the
// schema if it does not exist.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			external_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			tags TEXT,
			keywords TEXT,
			updated_at TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			private INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'published'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_active ON articles(active)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const articleColumns = `external_id, title, content, url, tags, keywords, updated_at, active, private, status`

// GetByExternalID returns one article or ErrNotFound.
func (s *SQLite) GetByExternalID(ctx context.Context, externalID string) (types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE external_id = ?`, externalID)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return types.Article{}, ErrNotFound
	}
	if err != nil {
		return types.Article{}, fmt.Errorf("querying article %s: %w", externalID, err)
	}
	return a, nil
}

// List returns all articles, optionally only active ones.
func (s *SQLite) List(ctx context.Context, activeOnly bool) ([]types.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// ListIDs returns the set of stored external IDs.
func (s *SQLite) ListIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT external_id FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("listing article IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning ID: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Insert stores a new article row.
func (s *SQLite) Insert(ctx context.Context, a types.Article) error {
	tagsJSON := marshalList(a.Tags)
	keywordsJSON := marshalList(a.Keywords)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ExternalID, a.Title, a.Content, a.URL, tagsJSON, keywordsJSON,
		formatTime(a.UpdatedAt), boolInt(a.Active), boolInt(a.Private), string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", a.ExternalID, err)
	}
	return nil
}

// Update rewrites upstream-owned fields. The keywords column is absent
// from the statement so a sync-driven update can never clobber it.
func (s *SQLite) Update(ctx context.Context, a types.Article) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles
		 SET title = ?, content = ?, url = ?, tags = ?, updated_at = ?,
		     active = ?, private = ?, status = ?
		 WHERE external_id = ?`,
		a.Title, a.Content, a.URL, marshalList(a.Tags), formatTime(a.UpdatedAt),
		boolInt(a.Active), boolInt(a.Private), string(a.Status), a.ExternalID,
	)
	if err != nil {
		return fmt.Errorf("updating article %s: %w", a.ExternalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetKeywords replaces one article's keyword list.
func (s *SQLite) SetKeywords(ctx context.Context, externalID string, keywords []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET keywords = ? WHERE external_id = ?`,
		marshalList(keywords), externalID,
	)
	if err != nil {
		return fmt.Errorf("setting keywords for %s: %w", externalID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the article row. A missing row is not an error.
func (s *SQLite) Delete(ctx context.Context, externalID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM articles WHERE external_id = ?`, externalID); err != nil {
		return fmt.Errorf("deleting article %s: %w", externalID, err)
	}
	return nil
}

// Count returns the number of stored articles.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// FindByTerms returns active articles whose title or content contains any
// term, case-insensitively. The OR chain over an arbitrary term list is
// built with squirrel rather than by hand.
func (s *SQLite) FindByTerms(ctx context.Context, terms []string) ([]types.Article, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	match := sq.Or{}
	for _, term := range terms {
		pattern := "%" + strings.ToLower(term) + "%"
		match = append(match,
			sq.Like{"lower(title)": pattern},
			sq.Like{"lower(content)": pattern},
		)
	}

	query, args, err := sq.Select(strings.Split(articleColumns, ", ")...).
		From("articles").
		Where(sq.Eq{"active": 1}).
		Where(match).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building term query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying by terms: %w", err)
	}
	defer rows.Close()
	return collectArticles(rows)
}

// --- row mapping helpers ---

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (types.Article, error) {
	var (
		a            types.Article
		tagsJSON     sql.NullString
		keywordsJSON sql.NullString
		updatedAt    string
		active       int
		private      int
		status       string
	)
	err := row.Scan(&a.ExternalID, &a.Title, &a.Content, &a.URL,
		&tagsJSON, &keywordsJSON, &updatedAt, &active, &private, &status)
	if err != nil {
		return types.Article{}, err
	}

	a.Tags = unmarshalList(tagsJSON)
	a.Keywords = unmarshalList(keywordsJSON)
	a.Active = active != 0
	a.Private = private != 0
	a.Status = types.PublicationStatus(status)
	if updatedAt != "" {
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			a.UpdatedAt = t
		}
	}
	return a, nil
}

func collectArticles(rows *sql.Rows) ([]types.Article, error) {
	var articles []types.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// marshalList encodes a string list as JSON text. A nil list stays NULL so
// "never backfilled" remains distinguishable from "backfilled to empty".
func marshalList(list []string) any {
	if list == nil {
		return nil
	}
	data, _ := json.Marshal(list)
	return string(data)
}

func unmarshalList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(col.String), &list); err != nil {
		return nil
	}
	return list
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
