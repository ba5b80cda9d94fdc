// Package section implements the headline-section editor (SPEC_FULL.md
// component C): given a byte position pointing at a headline, split the
// surrounding bytes into headline-line / planning-line / property-drawer /
// logbook-drawer / body segments, and provide the primitives the mutation
// engine uses to reassemble an edited buffer without disturbing any byte
// outside the segment actually changed.
package section

import (
	"fmt"
	"strings"

	"github.com/jra3/orgctl/internal/orgtime"
)

// Segments is the result of splitting one headline's own section (not its
// subtree: a child headline immediately ends the body).
type Segments struct {
	HeadlineLine             string
	HeadlineStart, HeadlineEnd int

	HasPlanning              bool
	PlanningLine             string
	PlanningStart, PlanningEnd int

	HasProperties            bool
	PropertyDrawer           string
	PropertyStart, PropertyEnd int

	HasLogbook               bool
	LogbookDrawer            string
	LogbookStart, LogbookEnd int

	Body                     string
	BodyStart, BodyEnd       int

	Level int
}

// SectionEnd is the end of this headline's own section: the position
// of the next headline boundary (any level) or EOF.
func (s *Segments) SectionEnd() int { return s.BodyEnd }

// lineAt returns the text of the line starting at pos (excluding its
// terminator, and excluding a trailing "\r" so CRLF files classify the
// same as LF ones) and the offset of the following line's first byte.
func lineAt(content string, pos int) (text string, next int) {
	idx := strings.IndexByte(content[pos:], '\n')
	if idx < 0 {
		return strings.TrimSuffix(content[pos:], "\r"), len(content)
	}
	return strings.TrimSuffix(content[pos:pos+idx], "\r"), pos + idx + 1
}

// nextHeadlineBoundary scans forward from start and returns the byte
// position of the next line that is a headline at level <= maxLevel
// (maxLevel == 0 means "any level"), or len(content) if none is found.
func nextHeadlineBoundary(content string, start int, maxLevel int) int {
	pos := start
	for pos < len(content) {
		text, next := lineAt(content, pos)
		if lvl := orgtime.HeadlineStars(text); lvl > 0 {
			if maxLevel == 0 || lvl <= maxLevel {
				return pos
			}
		}
		pos = next
	}
	return len(content)
}

func isPlanningLine(text string) bool {
	trimmed := strings.TrimLeft(text, " \t")
	return strings.HasPrefix(trimmed, "SCHEDULED:") ||
		strings.HasPrefix(trimmed, "DEADLINE:") ||
		strings.HasPrefix(trimmed, "CLOSED:")
}

// drawerEnd returns the byte offset just past a drawer's closing marker
// line, given that a drawer opens exactly at start. ok is false if start
// is not the opening marker. An unterminated drawer is consumed to EOF.
func drawerEnd(content string, start int, openMarker, closeMarker string) (end int, ok bool) {
	text, next := lineAt(content, start)
	if !orgtime.IsDrawerMarker(text, openMarker) {
		return 0, false
	}
	pos := next
	for pos < len(content) {
		t, n := lineAt(content, pos)
		if orgtime.IsDrawerMarker(t, closeMarker) {
			return n, true
		}
		pos = n
	}
	return len(content), true
}

// Split parses the section belonging to the headline at byte position pos.
// Property-drawer key lookups are always scoped to PropertyDrawer and never
// reach into Body, so a line that merely looks like ":KEY: value" inside a
// fenced source block in the body is never mistaken for a property.
func Split(content string, pos int) (*Segments, error) {
	if pos < 0 || pos > len(content) {
		return nil, fmt.Errorf("section: position %d out of range", pos)
	}
	headlineLine, cursor := lineAt(content, pos)
	level := orgtime.HeadlineStars(headlineLine)
	if level == 0 {
		return nil, fmt.Errorf("section: position %d is not a headline", pos)
	}

	seg := &Segments{
		HeadlineLine:  headlineLine,
		HeadlineStart: pos,
		HeadlineEnd:   cursor,
		Level:         level,
	}

	if cursor < len(content) {
		text, next := lineAt(content, cursor)
		if isPlanningLine(text) {
			seg.HasPlanning = true
			seg.PlanningLine = text
			seg.PlanningStart = cursor
			seg.PlanningEnd = next
			cursor = next
		}
	}

	if cursor < len(content) {
		if end, ok := drawerEnd(content, cursor, orgtime.PropertiesOpen, orgtime.PropertiesClose); ok {
			seg.HasProperties = true
			seg.PropertyStart = cursor
			seg.PropertyEnd = end
			seg.PropertyDrawer = content[cursor:end]
			cursor = end
		}
	}

	if cursor < len(content) {
		if end, ok := drawerEnd(content, cursor, orgtime.LogbookOpen, orgtime.LogbookClose); ok {
			seg.HasLogbook = true
			seg.LogbookStart = cursor
			seg.LogbookEnd = end
			seg.LogbookDrawer = content[cursor:end]
			cursor = end
		}
	}

	bodyEnd := nextHeadlineBoundary(content, cursor, 0)
	seg.Body = content[cursor:bodyEnd]
	seg.BodyStart = cursor
	seg.BodyEnd = bodyEnd

	return seg, nil
}

// SubtreeEnd returns the byte position where the subtree rooted at the
// headline at pos ends: the next headline at the same level or shallower,
// or EOF. Children (deeper headlines) are swallowed into the subtree.
func SubtreeEnd(content string, pos int) (int, error) {
	headlineLine, cursor := lineAt(content, pos)
	level := orgtime.HeadlineStars(headlineLine)
	if level == 0 {
		return 0, fmt.Errorf("section: position %d is not a headline", pos)
	}
	return nextHeadlineBoundary(content, cursor, level), nil
}

// Splice replaces content[start:end] with replacement.
func Splice(content string, start, end int, replacement string) string {
	return content[:start] + replacement + content[end:]
}

// HeadlineTextEnd is the byte offset just past the headline line's text,
// excluding its line terminator (so replacing [HeadlineStart,
// HeadlineTextEnd) leaves a CRLF terminator's "\r" byte untouched).
func (s *Segments) HeadlineTextEnd() int { return s.HeadlineStart + len(s.HeadlineLine) }

// PlanningTextEnd is the analogous offset for the planning line.
func (s *Segments) PlanningTextEnd() int { return s.PlanningStart + len(s.PlanningLine) }

// PropertiesInsertPos returns where a :PROPERTIES: drawer should be
// inserted if the headline does not already have one: immediately after
// the planning line if present, otherwise immediately after the headline
// line.
func (s *Segments) PropertiesInsertPos() int {
	if s.HasPlanning {
		return s.PlanningEnd
	}
	return s.HeadlineEnd
}

// LogbookInsertPos returns where a :LOGBOOK: drawer should be inserted if
// absent: immediately after the property drawer, else the planning line,
// else the headline line.
func (s *Segments) LogbookInsertPos() int {
	if s.HasProperties {
		return s.PropertyEnd
	}
	if s.HasPlanning {
		return s.PlanningEnd
	}
	return s.HeadlineEnd
}

// FormatPropertyDrawer renders a full :PROPERTIES:...:END: block, each
// property on its own line in the given order, terminated with a newline.
func FormatPropertyDrawer(props []orgtime.Property) string {
	var b strings.Builder
	b.WriteString(orgtime.PropertiesOpen)
	b.WriteByte('\n')
	for _, p := range props {
		b.WriteString(orgtime.FormatPropertyLine(p))
		b.WriteByte('\n')
	}
	b.WriteString(orgtime.PropertiesClose)
	b.WriteByte('\n')
	return b.String()
}

// FormatLogbookDrawer renders a full :LOGBOOK:...:END: block from
// pre-formatted entry lines (newest first is the caller's responsibility),
// terminated with a newline.
func FormatLogbookDrawer(entries []string) string {
	var b strings.Builder
	b.WriteString(orgtime.LogbookOpen)
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteString(orgtime.LogbookClose)
	b.WriteByte('\n')
	return b.String()
}

// PropertyLines splits a PropertyDrawer's inner text back into ordered
// Property values (skipping the marker lines).
func PropertyLines(drawer string) []orgtime.Property {
	var props []orgtime.Property
	lines := strings.Split(drawer, "\n")
	for _, l := range lines {
		if orgtime.IsDrawerMarker(l, orgtime.PropertiesOpen) || orgtime.IsDrawerMarker(l, orgtime.PropertiesClose) {
			continue
		}
		if p, ok := orgtime.ParsePropertyLine(l); ok {
			props = append(props, p)
		}
	}
	return props
}

// LogbookEntryLines splits a LogbookDrawer's inner text back into its raw
// entry lines (skipping the marker lines and blank lines), preserving
// order. Multi-line entries (e.g. a note's hanging indented text) keep
// their continuation lines attached to the preceding "- " line.
func LogbookEntryLines(drawer string) []string {
	lines := strings.Split(drawer, "\n")
	var entries []string
	for _, l := range lines {
		if orgtime.IsDrawerMarker(l, orgtime.LogbookOpen) || orgtime.IsDrawerMarker(l, orgtime.LogbookClose) {
			continue
		}
		if l == "" {
			continue
		}
		trimmed := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "CLOCK:") {
			entries = append(entries, l)
		} else if len(entries) > 0 {
			entries[len(entries)-1] = entries[len(entries)-1] + "\n" + l
		}
	}
	return entries
}
