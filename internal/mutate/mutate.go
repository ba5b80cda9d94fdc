// Package mutate implements the mutation engine (SPEC_FULL.md component
// E): byte-exact in-place edits over org buffers. Every operation takes
// (content, position, policy, now) and returns new content; every edit is
// expressed as section.Splice over byte ranges reported by
// internal/section, so text outside the touched region is never rewritten.
package mutate

import (
	"strings"
	"time"

	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

type headlineParts struct {
	Stars       string
	Todo        string
	HasPriority bool
	Priority    byte
	Title       string
	Tags        []string
}

func parseHeadlineLine(line string, active, done []orgtime.Keyword) headlineParts {
	level := orgtime.HeadlineStars(line)
	var hp headlineParts
	hp.Stars = line[:level]
	remainder := line[level+1:]

	sp := strings.IndexByte(remainder, ' ')
	token := remainder
	if sp >= 0 {
		token = remainder[:sp]
	}
	isKeyword := false
	for _, kw := range active {
		if kw.Name == token {
			isKeyword = true
			break
		}
	}
	if !isKeyword {
		for _, kw := range done {
			if kw.Name == token {
				isKeyword = true
				break
			}
		}
	}
	if isKeyword {
		hp.Todo = token
		if sp >= 0 {
			remainder = remainder[sp+1:]
		} else {
			remainder = ""
		}
	}

	if letter, n, ok := orgtime.ParsePriority(remainder); ok {
		hp.HasPriority = true
		hp.Priority = letter
		remainder = strings.TrimPrefix(remainder[n:], " ")
	}

	title, tags := orgtime.ParseTagList(remainder)
	hp.Title = title
	hp.Tags = tags
	return hp
}

func formatHeadlineLine(hp headlineParts) string {
	var b strings.Builder
	b.WriteString(hp.Stars)
	b.WriteByte(' ')
	if hp.Todo != "" {
		b.WriteString(hp.Todo)
		b.WriteByte(' ')
	}
	if hp.HasPriority {
		b.WriteString(orgtime.FormatPriority(hp.Priority))
		b.WriteByte(' ')
	}
	b.WriteString(hp.Title)
	if tagList := orgtime.FormatTagList(hp.Tags); tagList != "" {
		b.WriteByte(' ')
		b.WriteString(tagList)
	}
	return b.String()
}

// replaceHeadlineLine rewrites seg's headline line to reflect hp, touching
// only the line's text bytes (its terminator, and everything after it, is
// untouched).
func replaceHeadlineLine(content string, seg *section.Segments, hp headlineParts) string {
	return section.Splice(content, seg.HeadlineStart, seg.HeadlineTextEnd(), formatHeadlineLine(hp))
}

func isDoneKeyword(name string, done []orgtime.Keyword) bool {
	for _, kw := range done {
		if kw.Name == name {
			return true
		}
	}
	return false
}

func getProperty(seg *section.Segments, key string) (orgtime.Property, bool) {
	for _, p := range section.PropertyLines(seg.PropertyDrawer) {
		if p.Key == key {
			return p, true
		}
	}
	return orgtime.Property{}, false
}

// setProperty sets key=value in seg's property drawer (creating the drawer
// if absent) and returns the new content.
func setProperty(content string, seg *section.Segments, key, value string) string {
	if seg.HasProperties {
		props := section.PropertyLines(seg.PropertyDrawer)
		found := false
		for i := range props {
			if props[i].Key == key {
				props[i].Value = value
				found = true
				break
			}
		}
		if !found {
			props = append(props, orgtime.Property{Key: key, Value: value})
		}
		return section.Splice(content, seg.PropertyStart, seg.PropertyEnd, section.FormatPropertyDrawer(props))
	}
	pos := seg.PropertiesInsertPos()
	return section.Splice(content, pos, pos, section.FormatPropertyDrawer([]orgtime.Property{{Key: key, Value: value}}))
}

// removeProperty deletes key from seg's property drawer. If the drawer
// becomes empty, the drawer itself is removed.
func removeProperty(content string, seg *section.Segments, key string) string {
	if !seg.HasProperties {
		return content
	}
	props := section.PropertyLines(seg.PropertyDrawer)
	kept := props[:0:0]
	for _, p := range props {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return section.Splice(content, seg.PropertyStart, seg.PropertyEnd, "")
	}
	return section.Splice(content, seg.PropertyStart, seg.PropertyEnd, section.FormatPropertyDrawer(kept))
}

// prependLogbookEntry inserts entry as the newest (first) logbook entry,
// creating the drawer (in metadata position) if one does not exist.
func prependLogbookEntry(content string, seg *section.Segments, entry string) string {
	if seg.HasLogbook {
		insertAt := seg.LogbookStart + len(orgtime.LogbookOpen) + 1
		return section.Splice(content, insertAt, insertAt, entry+"\n")
	}
	pos := seg.LogbookInsertPos()
	return section.Splice(content, pos, pos, section.FormatLogbookDrawer([]string{entry}))
}

// timestampAt builds an inactive, minute-precision timestamp for t, the
// form used for CLOSED/LAST_REPEAT/logbook stamps.
func timestampAt(t time.Time) *orgtime.Timestamp {
	y, m, d := t.Date()
	return &orgtime.Timestamp{
		Kind:    orgtime.Inactive,
		Year:    y,
		Month:   int(m),
		Day:     d,
		HasTime: true,
		Hour:    t.Hour(),
		Minute:  t.Minute(),
	}
}
