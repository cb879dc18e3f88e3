// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheFile = "nlp-cache.db"

// Cache memoizes another Analyzer's results in SQLite so repeated runs over
// the same documents skip the service.
type Cache struct {
	inner Analyzer
	db    *sql.DB
}

// NewCache opens or creates dir/nlp-cache.db in front of inner.
func NewCache(inner Analyzer, dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, cacheFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// One writer at a time; readers share the connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		key TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		analysis TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{inner: inner, db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Name() string { return c.inner.Name() }

// Analyze returns the cached analysis for text, calling the inner analyzer
// and storing its result on a miss. Failures are never cached.
func (c *Cache) Analyze(ctx context.Context, text string) (*Analysis, error) {
	key := CacheKey(c.inner.Name(), text)

	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT analysis FROM analyses WHERE key = ?`, key).Scan(&raw)
	switch {
	case err == nil:
		var a Analysis
		if err := json.Unmarshal([]byte(raw), &a); err == nil {
			return &a, nil
		}
		// A corrupt row is treated as a miss and overwritten below.
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("reading nlp cache: %w", err)
	}

	a, err := c.inner.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO analyses (key, model, analysis, created_at) VALUES (?, ?, ?, ?)`,
		key, c.inner.Name(), string(data), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("writing nlp cache: %w", err)
	}
	return a, nil
}

// Len returns the number of cached analyses.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting nlp cache: %w", err)
	}
	return n, nil
}
