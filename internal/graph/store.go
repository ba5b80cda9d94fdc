// Package graph implements the graph store (SPEC_FULL.md component H): a
// second SQLite-backed representation of the file tree as a node/link/
// alias/ref/tag/citation graph, bit-compatible with an established
// external schema pinned at user_version 20.
package graph

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// UserVersion is the pragma value this schema is bit-compatible with.
const UserVersion = 20

// Store wraps the graph database connection.
type Store struct {
	db *sql.DB
}

// Open opens or creates the graph database at dbPath. A database with
// user_version 0 (not yet claimed by either store) is initialized and
// stamped to UserVersion. A user_version other than 0 or UserVersion is a
// hard error, per SPEC_FULL.md §3.2/§4.H.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("graph: create db directory: %w", err)
		}
	}

	escaped := strings.ReplaceAll(dbPath, " ", "%20")
	db, err := sql.Open("sqlite", "file:"+escaped+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("graph: open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("graph: enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("graph: enable foreign keys: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("graph: read user_version: %w", err)
	}

	switch {
	case version == 0:
		if _, err := db.Exec(schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("graph: initialize schema: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", UserVersion)); err != nil {
			db.Close()
			return nil, fmt.Errorf("graph: stamp user_version: %w", err)
		}
	case version == UserVersion:
		if _, err := db.Exec(schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("graph: verify schema: %w", err)
		}
	case version > UserVersion:
		db.Close()
		return nil, fmt.Errorf("graph: database schema version %d is newer than supported version %d", version, UserVersion)
	default:
		db.Close()
		return nil, fmt.Errorf("graph: database schema version %d is stale (expected %d); rebuild the database", version, UserVersion)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection, for sharing the file with
// internal/index.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graph: begin transaction: %w", err)
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
