package mutate

import (
	"strings"
	"time"

	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// AddNote implements SPEC_FULL.md §4.E.7: inserts a
// "- Note taken on [now] \\" line followed by a two-space indented note
// block, as the newest logbook entry.
func AddNote(content string, pos int, note string, now time.Time) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("- Note taken on ")
	b.WriteString(orgtime.Format(timestampAt(now)))
	b.WriteString(` \\`)
	for _, line := range strings.Split(note, "\n") {
		b.WriteByte('\n')
		b.WriteString("  ")
		b.WriteString(line)
	}
	return prependLogbookEntry(content, seg, b.String()), nil
}
