// Package orgdoc parses a raw org buffer into a position-preserving
// document tree: file-level keywords, the file property drawer, ordered
// headlines, and link occurrences. It performs no mutation; the
// headline-section editor (internal/section) operates on byte positions
// this package reports.
package orgdoc

import "github.com/jra3/orgctl/internal/orgtime"

// KeywordLine is a single "#+KEY: VALUE" line. Keys are matched
// case-insensitively but stored as written; duplicates are preserved in
// document order.
type KeywordLine struct {
	Key   string
	Value string
	Pos   int
}

// Planning holds the optional SCHEDULED/DEADLINE/CLOSED timestamps
// attached to a headline's planning line.
type Planning struct {
	Scheduled *orgtime.Timestamp
	Deadline  *orgtime.Timestamp
	Closed    *orgtime.Timestamp
}

// Headline is one outline node, as described in spec §3.1.
type Headline struct {
	Level      int
	Todo       string // "" if none
	HasPriority bool
	Priority   byte
	Title      string
	Tags       []string
	Planning   *Planning
	Properties []orgtime.Property // ordered, as they appear in the drawer
	Pos        int                // byte offset of the '*' starting the headline
	LinePos    int                // same as Pos; kept for readability at call sites
}

// LinkOccurrence is a link found anywhere in the document, attributed to
// its nearest preceding headline.
type LinkOccurrence struct {
	orgtime.Link
	Pos           int
	HeadlinePos   int // -1 if the link precedes every headline (file-level)
}

// Document is the full parse result for one org buffer.
type Document struct {
	Keywords       []KeywordLine
	FileProperties []orgtime.Property
	Headlines      []*Headline
	Links          []LinkOccurrence
	FileTags       []string
	LinkAbbrevs    []orgtime.LinkAbbrev
	TodoActive     []orgtime.Keyword
	TodoDone       []orgtime.Keyword
}

// TodoKeywordSet returns the full recognized set (active ++ done). When a
// document defines no #+TODO:/#+SEQ_TODO: lines, defaults is returned.
func (d *Document) TodoKeywordSet(defaultsActive, defaultsDone []orgtime.Keyword) (active, done []orgtime.Keyword) {
	if len(d.TodoActive) == 0 && len(d.TodoDone) == 0 {
		return defaultsActive, defaultsDone
	}
	return d.TodoActive, d.TodoDone
}

// IsDone reports whether name is one of the document's done-state keywords
// (falling back to defaultsDone when the document defines no custom set).
func (d *Document) IsDone(name string, defaultsActive, defaultsDone []orgtime.Keyword) bool {
	_, done := d.TodoKeywordSet(defaultsActive, defaultsDone)
	for _, kw := range done {
		if kw.Name == name {
			return true
		}
	}
	return false
}
