package graph

import (
	"context"
	"database/sql"
)

// Node is one row of the nodes table, as returned by lookups.
type Node struct {
	ID       string
	File     string
	Level    int
	Pos      int
	Title    string
	Todo     string
	Priority string
}

func scanNode(scan func(dest ...any) error) (Node, error) {
	var n Node
	var todo, priority sql.NullString
	err := scan(&n.ID, &n.File, &n.Level, &n.Pos, &n.Title, &todo, &priority)
	if todo.Valid {
		n.Todo = todo.String
	}
	if priority.Valid {
		n.Priority = priority.String
	}
	return n, err
}

// Backlinks returns every node that links to nodeID.
func (s *Store) Backlinks(ctx context.Context, nodeID string) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.file, n.level, n.pos, n.title, n.todo, n.priority
		FROM links l JOIN nodes n ON n.id = l.source
		WHERE l.dest = ?
		ORDER BY n.file, n.pos`, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// FindByTitleOrAlias tries an exact title match first, then an exact
// alias match, per SPEC_FULL.md §4.H.
func (s *Store) FindByTitleOrAlias(ctx context.Context, name string) (*Node, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file, level, pos, title, todo, priority FROM nodes WHERE title = ? LIMIT 1`, name)
	n, err := scanNode(row.Scan)
	if err == nil {
		return &n, nil
	}
	if !isNoRows(err) {
		return nil, err
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT n.id, n.file, n.level, n.pos, n.title, n.todo, n.priority
		FROM aliases a JOIN nodes n ON n.id = a.node_id
		WHERE a.alias = ? LIMIT 1`, name)
	n, err = scanNode(row.Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// FindByID looks up a node by its exact id.
func (s *Store) FindByID(ctx context.Context, id string) (*Node, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, file, level, pos, title, todo, priority FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row.Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// FindByTag returns every node carrying tag.
func (s *Store) FindByTag(ctx context.Context, tag string) ([]Node, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.file, n.level, n.pos, n.title, n.todo, n.priority
		FROM tags t JOIN nodes n ON n.id = t.node_id
		WHERE t.tag = ?
		ORDER BY n.file, n.pos`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		n, err := scanNode(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
