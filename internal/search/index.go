// Package search is the full-text index collaborator. It keeps a SQLite
// FTS5 table synchronized through the store's index hooks and answers text
// queries over task titles and descriptions. The core never reads from it;
// losing or rebuilding the index never affects task state.
package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/humont/shikigami-sub001/internal/task"
)

// Index wraps the FTS database. It implements store.Indexer.
type Index struct {
	db *sql.DB
}

// Hit is one search result.
type Hit struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Open opens (creating if needed) the index database at path.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	_, err = db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS tasks_fts
		USING fts5(id UNINDEXED, title, description, status UNINDEXED)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the index database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// IndexTask inserts or refreshes a task's searchable text.
func (ix *Index) IndexTask(t *task.Task) error {
	if _, err := ix.db.Exec(`DELETE FROM tasks_fts WHERE id = ?`, t.ID); err != nil {
		return fmt.Errorf("index delete: %w", err)
	}
	_, err := ix.db.Exec(`
		INSERT INTO tasks_fts (id, title, description, status) VALUES (?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, string(t.Status))
	if err != nil {
		return fmt.Errorf("index insert: %w", err)
	}
	return nil
}

// RemoveTask drops a task from the index.
func (ix *Index) RemoveTask(id string) error {
	if _, err := ix.db.Exec(`DELETE FROM tasks_fts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index remove: %w", err)
	}
	return nil
}

// Search runs an FTS query ranked by relevance.
func (ix *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := ix.db.Query(`
		SELECT id, title, status FROM tasks_fts
		WHERE tasks_fts MATCH ?
		ORDER BY rank LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Title, &h.Status); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
