package index

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// encryptedSuffixes are recognized as present-but-unindexable, per
// SPEC_FULL.md §3.4.
var encryptedSuffixes = []string{".gpg", ".age"}

// IsEncrypted reports whether path carries a recognized encrypted-file
// suffix.
func IsEncrypted(path string) bool {
	for _, s := range encryptedSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// HashContents returns the lowercase-hex SHA-256 of contents, the index
// store's content hash.
func HashContents(contents []byte) string {
	sum := sha256.Sum256(contents)
	return hex.EncodeToString(sum[:])
}

// FileRecord is the stored (hash, mtime) pair for one file.
type FileRecord struct {
	Path  string
	Hash  string
	Mtime int64
}

func (s *Store) fileRecord(ctx context.Context, path string) (*FileRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT hash, mtime FROM files WHERE path = ?`, path)
	var rec FileRecord
	rec.Path = path
	if err := row.Scan(&rec.Hash, &rec.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &rec, true, nil
}

// touchMtime updates only the stored mtime, leaving hash and all
// dependent rows untouched.
func (s *Store) touchMtime(ctx context.Context, path string, mtime int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE files SET mtime = ? WHERE path = ?`, mtime, path)
	return err
}

// SyncFile implements SPEC_FULL.md §4.G's "sync file" operation: inside one
// transaction, delete existing FTS/headline rows for path, insert the file
// row, insert each headline with its direct and inherited tags, then
// rebuild FTS for the file. doc must already be parsed from contents.
func (s *Store) SyncFile(ctx context.Context, path string, contents string, mtime int64, fp *orgconf.FilePolicy, doc *orgdoc.Document) error {
	hash := HashContents([]byte(contents))

	if err := s.syncFileTx(ctx, path, contents, hash, mtime, fp, doc); err != nil {
		return err
	}
	if s.ftsCache != nil {
		s.ftsCache.Clear()
	}
	return nil
}

func (s *Store) syncFileTx(ctx context.Context, path string, contents string, hash string, mtime int64, fp *orgconf.FilePolicy, doc *orgdoc.Document) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM headlines WHERE file = ?`, path); err != nil {
			return fmt.Errorf("index: delete headlines for %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM headline_fts WHERE file = ?`, path); err != nil {
			return fmt.Errorf("index: delete fts rows for %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (path, hash, mtime) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, mtime = excluded.mtime`,
			path, hash, mtime); err != nil {
			return fmt.Errorf("index: upsert file row for %s: %w", path, err)
		}

		for _, h := range doc.Headlines {
			if err := insertHeadline(ctx, tx, path, contents, fp, doc, h); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertHeadline(ctx context.Context, tx *sql.Tx, path, contents string, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) error {
	seg, err := section.Split(contents, h.Pos)
	if err != nil {
		return fmt.Errorf("index: split headline at %d in %s: %w", h.Pos, path, err)
	}

	var todo, priority sql.NullString
	if h.Todo != "" {
		todo = sql.NullString{String: h.Todo, Valid: true}
	}
	if h.HasPriority {
		priority = sql.NullString{String: string(h.Priority), Valid: true}
	}

	schedRaw, schedDt := planningColumns(h.Planning, "scheduled")
	deadRaw, deadDt := planningColumns(h.Planning, "deadline")
	closedRaw, closedDt := planningColumns(h.Planning, "closed")

	propsJSON, err := propertiesJSON(h.Properties)
	if err != nil {
		return err
	}
	outlinePath := orgconf.OutlinePath(doc, h)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO headlines (
			file, char_pos, level, title, todo, priority,
			scheduled_raw, scheduled_dt, deadline_raw, deadline_dt, closed_raw, closed_dt,
			properties_json, body, outline_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, h.Pos, h.Level, h.Title, todo, priority,
		schedRaw, schedDt, deadRaw, deadDt, closedRaw, closedDt,
		propsJSON, seg.Body, outlinePath,
	); err != nil {
		return fmt.Errorf("index: insert headline at %d in %s: %w", h.Pos, path, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO headline_fts (title, body, file, char_pos) VALUES (?, ?, ?, ?)`,
		h.Title, seg.Body, path, h.Pos); err != nil {
		return fmt.Errorf("index: insert fts row at %d in %s: %w", h.Pos, path, err)
	}

	for _, tag := range h.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO headline_tags (file, char_pos, tag, inherited) VALUES (?, ?, ?, 0)`,
			path, h.Pos, tag); err != nil {
			return fmt.Errorf("index: insert direct tag at %d in %s: %w", h.Pos, path, err)
		}
	}
	for _, tag := range orgconf.AllTags(fp, doc, h) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO headline_tags (file, char_pos, tag, inherited) VALUES (?, ?, ?, 1)`,
			path, h.Pos, tag); err != nil {
			return fmt.Errorf("index: insert inherited tag at %d in %s: %w", h.Pos, path, err)
		}
	}
	return nil
}

func planningColumns(p *orgdoc.Planning, which string) (raw, dt sql.NullString) {
	if p == nil {
		return
	}
	var ts *orgtime.Timestamp
	switch which {
	case "scheduled":
		ts = p.Scheduled
	case "deadline":
		ts = p.Deadline
	case "closed":
		ts = p.Closed
	}
	if ts == nil {
		return
	}
	return sql.NullString{String: orgtime.Format(ts), Valid: true},
		sql.NullString{String: sortableDt(ts), Valid: true}
}

// sortableDt renders a timestamp so all-day values sort lexicographically
// before timed values on the same date, per spec.md §3.3.
func sortableDt(ts *orgtime.Timestamp) string {
	return ts.Sortable()
}

func propertiesJSON(props []orgtime.Property) (sql.NullString, error) {
	if len(props) == 0 {
		return sql.NullString{}, nil
	}
	m := make(map[string]string, len(props))
	for _, p := range props {
		m[p.Key] = p.Value
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("index: marshal properties: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// DeleteFile removes all rows (files, headlines, headline_tags, FTS)
// belonging to path, cascading.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM headline_fts WHERE file = ?`, path); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
		return err
	})
	if err == nil && s.ftsCache != nil {
		s.ftsCache.Clear()
	}
	return err
}

// SyncPlan is the decision SyncDirectory reaches for one file.
type SyncPlan string

const (
	PlanSkip      SyncPlan = "skip"
	PlanTouch     SyncPlan = "touch"
	PlanReindex   SyncPlan = "reindex"
	PlanEncrypted SyncPlan = "encrypted"
)

// DecidePlan implements the mtime-then-hash comparison of SPEC_FULL.md
// §3.4/§4.G.
func (s *Store) DecidePlan(ctx context.Context, path string, contents []byte, mtime int64) (SyncPlan, error) {
	if IsEncrypted(path) {
		return PlanEncrypted, nil
	}
	rec, ok, err := s.fileRecord(ctx, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return PlanReindex, nil
	}
	if rec.Mtime == mtime {
		return PlanSkip, nil
	}
	if rec.Hash == HashContents(contents) {
		return PlanTouch, nil
	}
	return PlanReindex, nil
}

// ApplyPlan executes plan for path, given freshly read contents, mtime,
// and a parse of contents (doc/fp may be nil when plan doesn't need them).
func (s *Store) ApplyPlan(ctx context.Context, plan SyncPlan, path string, contents string, mtime int64, fp *orgconf.FilePolicy, doc *orgdoc.Document) error {
	switch plan {
	case PlanSkip, PlanEncrypted:
		return nil
	case PlanTouch:
		return s.touchMtime(ctx, path, mtime)
	case PlanReindex:
		return s.SyncFile(ctx, path, contents, mtime, fp, doc)
	default:
		return fmt.Errorf("index: unknown sync plan %q", plan)
	}
}

// KnownFiles returns every path currently stored, for reconciling
// deletions.
func (s *Store) KnownFiles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ReconcileDeletions drops rows for any known file no longer present in
// currentFiles (a set of paths that exist on disk right now), returning the
// paths it removed.
func (s *Store) ReconcileDeletions(ctx context.Context, currentFiles map[string]bool) ([]string, error) {
	known, err := s.KnownFiles(ctx)
	if err != nil {
		return nil, err
	}
	var deleted []string
	for _, p := range known {
		if !currentFiles[p] {
			if err := s.DeleteFile(ctx, p); err != nil {
				return deleted, fmt.Errorf("index: delete stale file %s: %w", p, err)
			}
			deleted = append(deleted, p)
		}
	}
	return deleted, nil
}

// ForceSync re-indexes path unconditionally, ignoring mtime/hash.
func (s *Store) ForceSync(ctx context.Context, path string, contents string, mtime int64, fp *orgconf.FilePolicy, doc *orgdoc.Document) error {
	return s.SyncFile(ctx, path, contents, mtime, fp, doc)
}

// StatFile reads path's mtime (Unix seconds) and contents from disk.
func StatFile(path string) (contents []byte, mtime int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	contents, err = os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return contents, info.ModTime().Unix(), nil
}

// WalkOrgFiles lists every file under root whose name ends in ".org" or
// an encrypted-org suffix (".org.gpg", ".org.age"), for the "including
// encrypted suffixes for the listing but not for indexing" rule.
func WalkOrgFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".org") || strings.HasSuffix(name, ".org.gpg") || strings.HasSuffix(name, ".org.age") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
