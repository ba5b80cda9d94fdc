package mutate

import (
	"time"

	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// ClockIn implements SPEC_FULL.md §4.E.6: inserts a new open "CLOCK: [now]"
// line as the first entry of the logbook, creating the drawer if needed.
func ClockIn(content string, pos int, now time.Time) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	entry := orgtime.FormatClockLine(orgtime.ClockEntry{Start: timestampAt(now)})
	return prependLogbookEntry(content, seg, entry), nil
}

// ClockOut implements SPEC_FULL.md §4.E.6: closes the first currently-open
// CLOCK line (no "--"), appending "--[now] =>  H:MM". A negative computed
// duration makes the call a no-op. Multiple open clocks close in the order
// they appear in the drawer (topmost first; since ClockIn prepends, that is
// the most recently started one).
func ClockOut(content string, pos int, now time.Time) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	if !seg.HasLogbook {
		return content, nil
	}

	entries := section.LogbookEntryLines(seg.LogbookDrawer)
	openIdx := -1
	var openEntry orgtime.ClockEntry
	for i, e := range entries {
		ce, ok := orgtime.ParseClockLine(e)
		if ok && ce.End == nil {
			openIdx = i
			openEntry = ce
			break
		}
	}
	if openIdx < 0 {
		return content, nil
	}

	hours, minutes, negative := orgtime.Duration(openEntry.Start, timestampAt(now))
	if negative {
		return content, nil
	}
	openEntry.End = timestampAt(now)
	openEntry.Duration = orgtime.FormatDuration(hours, minutes)
	entries[openIdx] = orgtime.FormatClockLine(openEntry)

	return section.Splice(content, seg.LogbookStart, seg.LogbookEnd, section.FormatLogbookDrawer(entries)), nil
}
