package folio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio/content"
)

// Store wraps a SQLite database holding the site-wide theme default and the
// last good listing of each remote content source.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the refresh path write snapshots while requests read.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS preferences (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshots (
    source TEXT PRIMARY KEY,
    posts TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
`)
	return err
}

// Get returns the stored preference for key, or "" when unset.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Set upserts the preference for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO preferences (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

type snapshotPost struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	Draft   bool   `json:"draft"`
	Content string `json:"content"`
}

// SaveSnapshot replaces the stored listing for source.
func (s *Store) SaveSnapshot(ctx context.Context, source string, posts []content.Post) error {
	rows := make([]snapshotPost, len(posts))
	for i, p := range posts {
		rows[i] = snapshotPost{
			Slug:    p.Slug,
			Title:   p.Title,
			Date:    p.Date,
			Author:  p.Author,
			Excerpt: p.Excerpt,
			Draft:   p.Draft,
			Content: p.Content,
		}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (source, posts, fetched_at) VALUES (?, ?, ?)`,
		source, string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadSnapshot returns the stored listing for source, or nil when none was
// saved.
func (s *Store) LoadSnapshot(ctx context.Context, source string) ([]content.Post, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT posts FROM snapshots WHERE source = ?`, source).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []snapshotPost
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, err
	}
	posts := make([]content.Post, len(rows))
	for i, r := range rows {
		posts[i] = content.Post{
			Slug: r.Slug,
			FrontMatter: content.FrontMatter{
				Title:   r.Title,
				Date:    r.Date,
				Author:  r.Author,
				Excerpt: r.Excerpt,
				Draft:   r.Draft,
			},
			Content: r.Content,
		}
	}
	return posts, nil
}
