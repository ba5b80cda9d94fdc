// Package index implements the persistent index store (SPEC_FULL.md
// component G): a content-addressed mirror of the org file tree into a
// queryable SQLite schema with full-text search and materialized tag
// inheritance.
package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jra3/orgctl/internal/cache"
	"github.com/jra3/orgctl/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the index database connection. ftsCache memoizes SearchFTS
// results by query string; every write path (SyncFile/DeleteFile/
// ApplyPlan) clears it, since a cached result set can otherwise outlive
// the rows it was computed from.
type Store struct {
	db       *sql.DB
	ftsCache *cache.Cache[[]FTSMatch]
}

// Open opens or creates the index database at dbPath with a default
// 60-second/10000-entry FTS result cache. Equivalent to
// OpenWithCache(dbPath, config.DefaultConfig().Cache).
func Open(dbPath string) (*Store, error) {
	return OpenWithCache(dbPath, config.DefaultConfig().Cache)
}

// OpenWithCache opens or creates the index database at dbPath, enabling
// WAL journaling and foreign-key enforcement, and initializing the schema
// if absent. If the database's user_version is owned by the graph store (a
// nonzero value other than what this package would set), Open still
// succeeds: the index schema is additive and both stores may share one
// file, per SPEC_FULL.md §4.G/§5. cacheCfg sizes the in-process FTS
// result cache; a zero TTL disables caching entirely.
func OpenWithCache(dbPath string, cacheCfg config.CacheConfig) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("index: create db directory: %w", err)
		}
	}

	escaped := strings.ReplaceAll(dbPath, " ", "%20")
	db, err := sql.Open("sqlite", "file:"+escaped+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: initialize schema: %w", err)
	}

	s := &Store{db: db}
	if cacheCfg.TTL > 0 {
		s.ftsCache = cache.New[[]FTSMatch](cacheCfg.TTL, cacheCfg.MaxEntries)
	}
	return s, nil
}

// Close closes the underlying database connection and stops the FTS
// result cache's background cleanup goroutine, if one was started.
func (s *Store) Close() error {
	if s.ftsCache != nil {
		s.ftsCache.Stop()
	}
	return s.db.Close()
}

// DB returns the underlying connection for callers (e.g. internal/graph)
// that need to share the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside one transaction, committed when fn returns nil and
// rolled back otherwise. The transaction is begun with the driver's default
// options, which in SQLite is a deferred transaction: the write lock is
// taken at the first write statement, not at BEGIN.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// DefaultDBPath returns the default on-disk location for the shared
// index/graph database.
func DefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, "orgctl", "index.db")
}
