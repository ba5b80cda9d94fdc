package orgdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jra3/orgctl/internal/orgtime"
)

// ParseOptions supplies the default TODO keyword set used when a document
// defines no #+TODO:/#+SEQ_TODO: lines of its own.
type ParseOptions struct {
	DefaultActive []orgtime.Keyword
	DefaultDone   []orgtime.Keyword
}

// DefaultKeywords returns the built-in "TODO | DONE" sequence.
func DefaultKeywords() ([]orgtime.Keyword, []orgtime.Keyword) {
	return []orgtime.Keyword{{Name: "TODO"}}, []orgtime.Keyword{{Name: "DONE"}}
}

type rawLine struct {
	start int
	text  string
}

// scanLines splits content into lines, tracking the absolute byte offset of
// each line's first byte. Trailing "\r" (CRLF) is stripped from the
// returned text but does not affect offsets of subsequent lines, since
// offsets are derived from "\n" positions in the raw buffer.
func scanLines(content string) []rawLine {
	var lines []rawLine
	start := 0
	for {
		if start == len(content) {
			if len(content) == 0 {
				lines = append(lines, rawLine{0, ""})
			}
			break
		}
		idx := strings.IndexByte(content[start:], '\n')
		if idx < 0 {
			lines = append(lines, rawLine{start, strings.TrimSuffix(content[start:], "\r")})
			break
		}
		end := start + idx
		lines = append(lines, rawLine{start, strings.TrimSuffix(content[start:end], "\r")})
		start = end + 1
	}
	return lines
}

// Parse produces the document tree for a raw org buffer. It returns an
// error only when a planning-line timestamp carries an impossible calendar
// date (see orgtime.ErrImpossibleDate); malformed link brackets instead
// degrade silently to plain text.
func Parse(content string, opts ParseOptions) (*Document, error) {
	lines := scanLines(content)
	doc := &Document{}

	activeKw, doneKw := opts.DefaultActive, opts.DefaultDone
	if len(activeKw) == 0 && len(doneKw) == 0 {
		activeKw, doneKw = DefaultKeywords()
	}

	var cur *Headline
	i := 0
	n := len(lines)

	consumeDrawer := func(start int, openMarker, closeMarker string) (props []orgtime.Property, next int, ok bool) {
		if start >= n || !orgtime.IsDrawerMarker(lines[start].text, openMarker) {
			return nil, start, false
		}
		j := start + 1
		for j < n && !orgtime.IsDrawerMarker(lines[j].text, closeMarker) {
			if p, isProp := orgtime.ParsePropertyLine(lines[j].text); isProp {
				props = append(props, p)
			}
			j++
		}
		if j < n {
			j++ // consume closing marker line
		}
		return props, j, true
	}

	// File-level keyword lines and property drawer, up to the first headline.
	for i < n {
		text := lines[i].text
		if orgtime.HeadlineStars(text) > 0 {
			break
		}
		trimmed := strings.TrimLeft(text, " \t")
		if strings.HasPrefix(trimmed, "#+") {
			key, value, ok := parseKeywordLine(trimmed)
			if ok {
				doc.Keywords = append(doc.Keywords, KeywordLine{Key: key, Value: value, Pos: lines[i].start})
				switch strings.ToUpper(key) {
				case "TODO", "SEQ_TODO":
					a, d := orgtime.ParseKeywordSequence(value)
					doc.TodoActive = append(doc.TodoActive, a...)
					doc.TodoDone = append(doc.TodoDone, d...)
				case "FILETAGS":
					doc.FileTags = append(doc.FileTags, splitFileTags(value)...)
				case "LINK":
					if ab, link, ok := parseLinkAbbrev(value); ok {
						doc.LinkAbbrevs = append(doc.LinkAbbrevs, orgtime.LinkAbbrev{Abbrev: ab, Template: link})
					}
				}
			}
			i++
			continue
		}
		if props, next, ok := consumeDrawer(i, orgtime.PropertiesOpen, orgtime.PropertiesClose); ok {
			doc.FileProperties = append(doc.FileProperties, props...)
			i = next
			continue
		}
		i++
	}

	if len(doc.TodoActive) > 0 || len(doc.TodoDone) > 0 {
		activeKw, doneKw = doc.TodoActive, doc.TodoDone
	}

	for i < n {
		text := lines[i].text
		level := orgtime.HeadlineStars(text)
		if level == 0 {
			scanLineLinks(doc, text, lines[i].start, cur)
			i++
			continue
		}

		h := &Headline{Level: level, Pos: lines[i].start, LinePos: lines[i].start}
		remainder := text[level+1:]
		remainder = parseHeadlineKeyword(remainder, activeKw, doneKw, h)
		remainder = parseHeadlinePriority(remainder, h)
		title, tags := orgtime.ParseTagList(remainder)
		h.Title = strings.TrimSpace(title)
		h.Tags = tags
		doc.Headlines = append(doc.Headlines, h)
		cur = h
		scanLineLinks(doc, text, lines[i].start, cur)
		i++

		if i < n {
			if p, ok := parsePlanningLine(lines[i].text); ok {
				var impossible *orgtime.ErrImpossibleDate
				if p.err != nil && errors.As(p.err, &impossible) {
					return nil, fmt.Errorf("parse planning line at byte %d: %w", lines[i].start, p.err)
				}
				h.Planning = p.planning
				i++
			}
		}

		if props, next, ok := consumeDrawer(i, orgtime.PropertiesOpen, orgtime.PropertiesClose); ok {
			h.Properties = props
			i = next
		}

		if _, next, ok := consumeDrawer(i, orgtime.LogbookOpen, orgtime.LogbookClose); ok {
			i = next
		}
	}

	return doc, nil
}

func parseKeywordLine(trimmed string) (key, value string, ok bool) {
	rest := trimmed[2:]
	end := strings.IndexByte(rest, ':')
	if end < 0 {
		return "", "", false
	}
	key = rest[:end]
	value = strings.TrimSpace(rest[end+1:])
	return key, value, true
}

func splitFileTags(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, ":")
	if value == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.FieldsFunc(value, func(r rune) bool { return r == ':' || r == ' ' }) {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseLinkAbbrev(value string) (abbrev, template string, ok bool) {
	fields := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], strings.TrimSpace(fields[1]), true
}

// parseHeadlineKeyword consumes a leading TODO keyword token from the
// headline remainder if it matches one in the active or done sets.
func parseHeadlineKeyword(remainder string, active, done []orgtime.Keyword, h *Headline) string {
	sp := strings.IndexByte(remainder, ' ')
	token := remainder
	if sp >= 0 {
		token = remainder[:sp]
	}
	for _, kw := range active {
		if kw.Name == token {
			h.Todo = token
			return consumeOneField(remainder, sp)
		}
	}
	for _, kw := range done {
		if kw.Name == token {
			h.Todo = token
			return consumeOneField(remainder, sp)
		}
	}
	return remainder
}

func consumeOneField(remainder string, sp int) string {
	if sp < 0 {
		return ""
	}
	return remainder[sp+1:]
}

func parseHeadlinePriority(remainder string, h *Headline) string {
	if letter, n, ok := orgtime.ParsePriority(remainder); ok {
		h.HasPriority = true
		h.Priority = letter
		rest := remainder[n:]
		return strings.TrimPrefix(rest, " ")
	}
	return remainder
}

type planningResult struct {
	planning *Planning
	err      error
}

func parsePlanningLine(text string) (planningResult, bool) {
	trimmed := strings.TrimLeft(text, " \t")
	hasAny := strings.HasPrefix(trimmed, "SCHEDULED:") ||
		strings.HasPrefix(trimmed, "DEADLINE:") ||
		strings.HasPrefix(trimmed, "CLOSED:")
	if !hasAny {
		return planningResult{}, false
	}
	p := &Planning{}
	labels := []struct {
		name string
		dst  **orgtime.Timestamp
	}{
		{"SCHEDULED:", &p.Scheduled},
		{"DEADLINE:", &p.Deadline},
		{"CLOSED:", &p.Closed},
	}
	for _, lbl := range labels {
		idx := strings.Index(trimmed, lbl.name)
		if idx < 0 {
			continue
		}
		rest := strings.TrimLeft(trimmed[idx+len(lbl.name):], " \t")
		ts, _, err := orgtime.ParseTimestamp(rest)
		if err != nil {
			var impossible *orgtime.ErrImpossibleDate
			if errors.As(err, &impossible) {
				return planningResult{planning: p, err: err}, true
			}
			// Malformed but not impossible: leave this field unset and
			// keep parsing the rest of the line (parser is total).
			continue
		}
		*lbl.dst = ts
	}
	return planningResult{planning: p}, true
}

// scanLineLinks finds every well-formed "[[...]]" link in text and records
// it against the containing headline (nil cur means file-level, recorded
// as HeadlinePos -1).
func scanLineLinks(doc *Document, text string, lineStart int, cur *Headline) {
	pos := 0
	for {
		idx := strings.Index(text[pos:], "[[")
		if idx < 0 {
			return
		}
		abs := pos + idx
		link, n, ok := orgtime.ParseLink(text[abs:])
		if !ok {
			pos = abs + 2
			continue
		}
		headlinePos := -1
		if cur != nil {
			headlinePos = cur.Pos
		}
		doc.Links = append(doc.Links, LinkOccurrence{
			Link:        link,
			Pos:         lineStart + abs,
			HeadlinePos: headlinePos,
		})
		pos = abs + n
	}
}
