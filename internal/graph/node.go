package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/jra3/orgctl/internal/mutate"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// ErrNodeNotFound is returned by operations that cannot locate their
// target node; it is recoverable, per SPEC_FULL.md §4.H.
var ErrNodeNotFound = fmt.Errorf("graph: node not found")

// DeleteFileRows removes path's file row and every dependent row,
// cascading. The caller is responsible for removing the file itself when
// deleting a file-level node.
func (s *Store) DeleteFileRows(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE file = ?`, path)
	return err
}

// DeleteNodeRows removes a single node and its dependent rows (aliases,
// refs, tags, citations, links as source), without touching its file row
// or sibling nodes. Used after a headline subtree removal.
func (s *Store) DeleteNodeRows(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	return err
}

// DeleteHeadlineSubtree implements the headline half of SPEC_FULL.md
// §4.H's node deletion: removes the subtree rooted at pos (including
// descendants) from content. A position of 0 or below is rejected with
// ErrNodeNotFound before SubtreeEnd is consulted, so a headline that
// starts at byte 0 is never removed by this function.
func DeleteHeadlineSubtree(content string, pos int) (string, error) {
	if pos <= 0 {
		return "", fmt.Errorf("%w: position %d is not a headline", ErrNodeNotFound, pos)
	}
	end, err := section.SubtreeEnd(content, pos)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNodeNotFound, err)
	}
	return content[:pos] + content[end:], nil
}

// AddAlias implements the headline-node half of alias addition: appends
// alias to the headline's ROAM_ALIASES property (creating it if absent).
func AddAlias(content string, pos int, alias string) (string, error) {
	return addToMultiValue(content, pos, "ROAM_ALIASES", alias)
}

// RemoveAlias removes alias from the headline's ROAM_ALIASES property.
func RemoveAlias(content string, pos int, alias string) (string, error) {
	return removeFromMultiValue(content, pos, "ROAM_ALIASES", alias)
}

// AddRef implements the headline-node half of ref addition. ref is stored
// verbatim (callers pass the already-formatted "@key" or "type:remainder"
// token per SPEC_FULL.md §4.H's ROAM_REFS convention).
func AddRef(content string, pos int, ref string) (string, error) {
	return addToMultiValue(content, pos, "ROAM_REFS", ref)
}

// RemoveRef removes ref from the headline's ROAM_REFS property.
func RemoveRef(content string, pos int, ref string) (string, error) {
	return removeFromMultiValue(content, pos, "ROAM_REFS", ref)
}

func addToMultiValue(content string, pos int, key, value string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNodeNotFound, err)
	}
	existing := currentProperty(seg, key)
	values := orgtime.ParseMultiValue(existing)
	for _, v := range values {
		if v == value {
			return content, nil
		}
	}
	values = append(values, value)
	return mutate.SetProperty(content, pos, key, orgtime.FormatMultiValue(values))
}

func removeFromMultiValue(content string, pos int, key, value string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNodeNotFound, err)
	}
	existing := currentProperty(seg, key)
	values := orgtime.ParseMultiValue(existing)
	filtered := values[:0]
	for _, v := range values {
		if v != value {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return mutate.RemoveProperty(content, pos, key)
	}
	return mutate.SetProperty(content, pos, key, orgtime.FormatMultiValue(filtered))
}

func currentProperty(seg *section.Segments, key string) string {
	for _, p := range section.PropertyLines(seg.PropertyDrawer) {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// SetFiletags implements the file-level-node half of tag editing: rewrites
// or inserts a "#+FILETAGS:" line at the top of the file.
func SetFiletags(content string, tags []string) string {
	value := ""
	if len(tags) > 0 {
		value = ":" + strings.Join(tags, ":") + ":"
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		upper := strings.ToUpper(strings.TrimLeft(line, " \t"))
		if strings.HasPrefix(upper, "#+FILETAGS:") {
			if value == "" {
				lines = append(lines[:i], lines[i+1:]...)
			} else {
				lines[i] = "#+FILETAGS: " + value
			}
			return strings.Join(lines, "\n")
		}
	}
	if value == "" {
		return content
	}
	return "#+FILETAGS: " + value + "\n" + content
}
