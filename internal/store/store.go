// Package store is the core of shikigami: a SQLite-backed task store with
// typed dependency edges, batch readiness promotion, an atomic claim
// transition, and an append-only audit/ledger history.
//
// A Store value is passed explicitly to every caller; there is no package
// level connection. All multi-step mutations run inside a single transaction
// so a storage fault leaves the database unchanged. Claim races between
// concurrent worker processes are resolved by a conditional UPDATE, not by
// locks.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/humont/shikigami-sub001/internal/ident"
	"github.com/humont/shikigami-sub001/internal/task"
)

//go:embed schema.sql
var schemaSQL string

// Indexer receives change notifications so an external full-text index can
// stay synchronized. The store only calls out; it never queries the index.
type Indexer interface {
	IndexTask(t *task.Task) error
	RemoveTask(id string) error
}

// Store owns the SQLite database handle and all core operations.
type Store struct {
	db       *sql.DB
	log      *slog.Logger
	idPrefix string
	indexer  Indexer
}

// Option configures a Store at open time.
type Option func(*Store)

// WithLogger attaches a structured logger for debug traces. Without one the
// store is silent.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDPrefix overrides the identifier prefix for newly created tasks.
func WithIDPrefix(prefix string) Option {
	return func(s *Store) { s.idPrefix = prefix }
}

// WithIndexer attaches a search indexer that is notified after mutations
// commit. Indexing failures are logged and never fail the mutation.
func WithIndexer(ix Indexer) Option {
	return func(s *Store) { s.indexer = ix }
}

// Open opens (creating if needed) the database at dbPath and applies the
// schema. The parent directory is created if missing. Foreign keys are
// enabled so edge and ledger rows cascade on hard delete.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_fk=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &Store{
		db:       db,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		idPrefix: ident.DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so query
// helpers can run either standalone or inside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notifyIndex pushes the task's current state to the indexer, if any.
func (s *Store) notifyIndex(t *task.Task) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexTask(t); err != nil {
		s.log.Warn("index update failed", "task", t.ID, "error", err)
	}
}

// notifyRemove tells the indexer a task is no longer visible.
func (s *Store) notifyRemove(id string) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.RemoveTask(id); err != nil {
		s.log.Warn("index removal failed", "task", id, "error", err)
	}
}
