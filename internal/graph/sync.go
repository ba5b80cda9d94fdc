package graph

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/jra3/orgctl/internal/elisp"
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// HashContents returns the lowercase-hex SHA-256 of contents.
func HashContents(contents []byte) string {
	sum := sha256.Sum256(contents)
	return hex.EncodeToString(sum[:])
}

func getProp(props []orgtime.Property, key string) (string, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func isExcluded(props []orgtime.Property) bool {
	v, ok := getProp(props, "ROAM_EXCLUDE")
	return ok && v != ""
}

// SyncFile implements SPEC_FULL.md §4.H's per-file update: clear the
// file's rows (cascading), insert the file row, insert the file-level and
// headline nodes, their aliases/refs/tags/olp, link rows, and citations.
func (s *Store) SyncFile(ctx context.Context, path string, contents string, atime, mtime string, fp *orgconf.FilePolicy, doc *orgdoc.Document) error {
	hash := HashContents([]byte(contents))
	title := fileTitle(doc)

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE file = ?`, path); err != nil {
			return fmt.Errorf("graph: delete file rows for %s: %w", path, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (file, title, hash, atime, mtime) VALUES (?, ?, ?, ?, ?)`,
			path, nullIfEmpty(title), hash, atime, mtime); err != nil {
			return fmt.Errorf("graph: insert file row for %s: %w", path, err)
		}

		var nodePositions []nodePos

		if id, ok := getProp(doc.FileProperties, "ID"); ok && !isExcluded(doc.FileProperties) {
			if err := insertFileNode(ctx, tx, path, id, title, doc); err != nil {
				return err
			}
			nodePositions = append(nodePositions, nodePos{ID: id, Pos: -1})
		}

		for _, h := range doc.Headlines {
			id, ok := getProp(h.Properties, "ID")
			if !ok || isExcluded(h.Properties) {
				continue
			}
			if err := insertHeadlineNode(ctx, tx, path, id, doc, h); err != nil {
				return err
			}
			nodePositions = append(nodePositions, nodePos{ID: id, Pos: h.Pos})
		}

		sort.Slice(nodePositions, func(i, j int) bool { return nodePositions[i].Pos < nodePositions[j].Pos })

		if err := insertLinks(ctx, tx, doc, nodePositions); err != nil {
			return err
		}
		if err := insertCitations(ctx, tx, contents, nodePositions); err != nil {
			return err
		}
		return nil
	})
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fileTitle(doc *orgdoc.Document) string {
	for _, k := range doc.Keywords {
		if strings.EqualFold(k.Key, "TITLE") {
			return k.Value
		}
	}
	return ""
}

type nodePos struct {
	ID  string
	Pos int
}

func insertFileNode(ctx context.Context, tx *sql.Tx, path, id, title string, doc *orgdoc.Document) error {
	props := propertyAlist(doc.FileProperties)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO nodes (id, file, level, pos, title, properties, olp)
		VALUES (?, ?, 0, 0, ?, ?, 'nil')`,
		id, path, title, props); err != nil {
		return fmt.Errorf("graph: insert file node for %s: %w", path, err)
	}
	if err := insertAliasesRefsTags(ctx, tx, id, doc.FileProperties, doc.FileTags); err != nil {
		return err
	}
	return nil
}

func insertHeadlineNode(ctx context.Context, tx *sql.Tx, path, id string, doc *orgdoc.Document, h *orgdoc.Headline) error {
	var todo, priority, scheduled, deadline sql.NullString
	if h.Todo != "" {
		todo = sql.NullString{String: h.Todo, Valid: true}
	}
	if h.HasPriority {
		priority = sql.NullString{String: string(h.Priority), Valid: true}
	}
	if h.Planning != nil {
		if h.Planning.Scheduled != nil {
			scheduled = sql.NullString{String: orgtime.Format(h.Planning.Scheduled), Valid: true}
		}
		if h.Planning.Deadline != nil {
			deadline = sql.NullString{String: orgtime.Format(h.Planning.Deadline), Valid: true}
		}
	}

	props := propertyAlist(h.Properties)
	olp := olpList(doc, h)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO nodes (id, file, level, pos, todo, priority, scheduled, deadline, title, properties, olp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, path, h.Level, h.Pos, todo, priority, scheduled, deadline, h.Title, props, olp); err != nil {
		return fmt.Errorf("graph: insert headline node at %d in %s: %w", h.Pos, path, err)
	}
	return insertAliasesRefsTags(ctx, tx, id, h.Properties, h.Tags)
}

func propertyAlist(props []orgtime.Property) string {
	pairs := make([][2]string, 0, len(props))
	for _, p := range props {
		pairs = append(pairs, [2]string{p.Key, p.Value})
	}
	return elisp.FormatAlist(pairs)
}

func olpList(doc *orgdoc.Document, h *orgdoc.Headline) string {
	anc := orgconf.Ancestors(doc, h)
	if len(anc) == 0 {
		return "nil"
	}
	titles := make([]string, len(anc))
	for i, a := range anc {
		titles[len(anc)-1-i] = a.Title
	}
	return elisp.FormatList(titles)
}

func insertAliasesRefsTags(ctx context.Context, tx *sql.Tx, nodeID string, props []orgtime.Property, tags []string) error {
	if v, ok := getProp(props, "ROAM_ALIASES"); ok {
		for _, alias := range orgtime.ParseMultiValue(v) {
			if _, err := tx.ExecContext(ctx, `INSERT INTO aliases (node_id, alias) VALUES (?, ?)`, nodeID, alias); err != nil {
				return fmt.Errorf("graph: insert alias for node %s: %w", nodeID, err)
			}
		}
	}
	if v, ok := getProp(props, "ROAM_REFS"); ok {
		for _, ref := range parseRefs(v) {
			if _, err := tx.ExecContext(ctx, `INSERT INTO refs (node_id, ref, type) VALUES (?, ?, ?)`, nodeID, ref.Ref, ref.Type); err != nil {
				return fmt.Errorf("graph: insert ref for node %s: %w", nodeID, err)
			}
		}
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tags (node_id, tag) VALUES (?, ?)`, nodeID, tag); err != nil {
			return fmt.Errorf("graph: insert tag for node %s: %w", nodeID, err)
		}
	}
	return nil
}

// Ref is one parsed ROAM_REFS entry.
type Ref struct {
	Ref  string
	Type string
}

// parseRefs implements SPEC_FULL.md §4.H's ROAM_REFS parsing: "@key" maps
// to type "cite"; any other token splits on its first ":" into type and
// remainder, preserving a leading "//" in the remainder untouched.
func parseRefs(value string) []Ref {
	tokens := orgtime.ParseMultiValue(value)
	refs := make([]Ref, 0, len(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "@") {
			refs = append(refs, Ref{Ref: tok[1:], Type: "cite"})
			continue
		}
		if idx := strings.IndexByte(tok, ':'); idx > 0 {
			refs = append(refs, Ref{Ref: tok[idx+1:], Type: tok[:idx]})
			continue
		}
		refs = append(refs, Ref{Ref: tok, Type: ""})
	}
	return refs
}

// nearestNode returns the id of the node in sorted (by Pos) positions
// whose Pos is <= pos and is the greatest such Pos; "" if none.
func nearestNode(positions []nodePos, pos int) string {
	best := ""
	for _, np := range positions {
		if np.Pos <= pos {
			best = np.ID
		} else {
			break
		}
	}
	return best
}

func insertLinks(ctx context.Context, tx *sql.Tx, doc *orgdoc.Document, positions []nodePos) error {
	for _, l := range doc.Links {
		source := nearestNode(positions, l.Pos)
		if source == "" {
			continue
		}
		containingHeadline := headlineAt(doc, l.HeadlinePos)
		olp := "nil"
		if containingHeadline != nil {
			olp = olpForLinkProps(doc, containingHeadline)
		}
		entries := []elisp.PlistEntry{{Key: "olp", Value: olp}}
		if l.HasSearch {
			entries = append(entries, elisp.PlistEntry{Key: "search-option", Value: `"` + elisp.EscapeString(l.SearchOption) + `"`})
		}
		props := elisp.FormatPlist(entries)
		if _, err := tx.ExecContext(ctx, `INSERT INTO links (pos, source, dest, type, properties) VALUES (?, ?, ?, ?, ?)`,
			l.Pos, source, l.Path, l.Type, props); err != nil {
			return fmt.Errorf("graph: insert link at %d: %w", l.Pos, err)
		}
	}
	return nil
}

func headlineAt(doc *orgdoc.Document, pos int) *orgdoc.Headline {
	if pos < 0 {
		return nil
	}
	for _, h := range doc.Headlines {
		if h.Pos == pos {
			return h
		}
	}
	return nil
}

func olpForLinkProps(doc *orgdoc.Document, h *orgdoc.Headline) string {
	return olpList(doc, h)
}

func insertCitations(ctx context.Context, tx *sql.Tx, contents string, positions []nodePos) error {
	cites := ExtractCitations(contents)
	for _, c := range cites {
		node := nearestNode(positions, c.Pos)
		if node == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO citations (node_id, cite_key, pos, properties) VALUES (?, ?, ?, 'nil')`,
			node, c.Key, c.Pos); err != nil {
			return fmt.Errorf("graph: insert citation at %d: %w", c.Pos, err)
		}
	}
	return nil
}
