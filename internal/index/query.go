package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// FTSMatch is one full-text search hit.
type FTSMatch struct {
	File    string
	CharPos int
	Title   string
}

// SearchFTS runs a full-text query against headline_fts, passing ftsQuery
// straight through to SQLite's FTS5 MATCH syntax (boolean operators,
// phrase quotes, prefix "*", column filters).
func (s *Store) SearchFTS(ctx context.Context, ftsQuery string, limit int) ([]FTSMatch, error) {
	if limit <= 0 {
		limit = 100
	}

	cacheKey := fmt.Sprintf("%s\x00%d", ftsQuery, limit)
	if s.ftsCache != nil {
		if cached, ok := s.ftsCache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT file, char_pos, title FROM headline_fts WHERE headline_fts MATCH ? ORDER BY rank LIMIT ?`,
		ftsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []FTSMatch
	for rows.Next() {
		var m FTSMatch
		if err := rows.Scan(&m.File, &m.CharPos, &m.Title); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.ftsCache != nil {
		s.ftsCache.Set(cacheKey, matches)
	}
	return matches, nil
}

// HeadlineQuery is the optional filter set for QueryHeadlines.
type HeadlineQuery struct {
	Todo            string // exact match, ignored if empty
	Tag             string // ignored if empty; matches headline_tags regardless of inherited
	OutlinePrefix   string // ignored if empty
	File            string // ignored if empty
}

// HeadlineRow is one row of the headlines table.
type HeadlineRow struct {
	File          string
	CharPos       int
	Level         int
	Title         string
	Todo          sql.NullString
	Priority      sql.NullString
	ScheduledRaw  sql.NullString
	ScheduledDt   sql.NullString
	DeadlineRaw   sql.NullString
	DeadlineDt    sql.NullString
	ClosedRaw     sql.NullString
	ClosedDt      sql.NullString
	PropertiesRaw sql.NullString
	OutlinePath   sql.NullString
}

// QueryHeadlines implements SPEC_FULL.md §4.G's headline query, including
// the "raw prefix || 0x1F || '%'" technique to avoid matching an outline
// path that merely starts with the prefix string followed by other
// characters.
func (s *Store) QueryHeadlines(ctx context.Context, q HeadlineQuery) ([]HeadlineRow, error) {
	var (
		conds []string
		args  []any
	)
	base := `SELECT h.file, h.char_pos, h.level, h.title, h.todo, h.priority,
		h.scheduled_raw, h.scheduled_dt, h.deadline_raw, h.deadline_dt,
		h.closed_raw, h.closed_dt, h.properties_json, h.outline_path
		FROM headlines h`

	if q.Tag != "" {
		base += ` JOIN headline_tags t ON t.file = h.file AND t.char_pos = h.char_pos`
		conds = append(conds, "t.tag = ?")
		args = append(args, q.Tag)
	}
	if q.Todo != "" {
		conds = append(conds, "h.todo = ?")
		args = append(args, q.Todo)
	}
	if q.File != "" {
		conds = append(conds, "h.file = ?")
		args = append(args, q.File)
	}
	if q.OutlinePrefix != "" {
		conds = append(conds, "(h.outline_path = ? OR h.outline_path LIKE ?)")
		args = append(args, q.OutlinePrefix, q.OutlinePrefix+"\x1f%")
	}

	query := base
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY h.file, h.char_pos"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HeadlineRow
	for rows.Next() {
		var r HeadlineRow
		if err := rows.Scan(&r.File, &r.CharPos, &r.Level, &r.Title, &r.Todo, &r.Priority,
			&r.ScheduledRaw, &r.ScheduledDt, &r.DeadlineRaw, &r.DeadlineDt,
			&r.ClosedRaw, &r.ClosedDt, &r.PropertiesRaw, &r.OutlinePath); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AgendaRow is one row returned by QueryAgenda.
type AgendaRow struct {
	File      string
	CharPos   int
	Title     string
	Field     string // "scheduled" or "deadline"
	Raw       string
	Dt        string
	Repeating bool
}

// QueryAgenda implements SPEC_FULL.md §4.G's split agenda query: rows whose
// raw timestamp text contains no "+" are treated as non-repeating and
// filtered to the [start, end] window; rows whose raw text contains "+"
// are repeating and returned regardless of window (the caller expands
// their occurrences, e.g. with internal/query.CollectAgenda). The caller
// is responsible for de-duplicating by (file, char_pos) when a headline's
// scheduled and deadline timestamps both match.
func (s *Store) QueryAgenda(ctx context.Context, startDt, endDt string) ([]AgendaRow, error) {
	var out []AgendaRow
	for _, field := range []string{"scheduled", "deadline"} {
		rawCol := field + "_raw"
		dtCol := field + "_dt"
		rows, err := s.db.QueryContext(ctx, `
			SELECT file, char_pos, title, `+rawCol+`, `+dtCol+`
			FROM headlines
			WHERE `+rawCol+` IS NOT NULL
			  AND (
				(`+rawCol+` NOT LIKE '%+%' AND `+dtCol+` >= ? AND `+dtCol+` <= ?)
				OR `+rawCol+` LIKE '%+%'
			  )`, startDt, endDt)
		if err != nil {
			return nil, err
		}
		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var r AgendaRow
				var raw string
				if err := rows.Scan(&r.File, &r.CharPos, &r.Title, &raw, &r.Dt); err != nil {
					return err
				}
				r.Field = field
				r.Raw = raw
				r.Repeating = strings.Contains(raw, "+")
				out = append(out, r)
			}
			return rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
