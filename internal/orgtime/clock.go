package orgtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockEntry is a parsed "CLOCK: ..." logbook line.
type ClockEntry struct {
	Start    *Timestamp
	End      *Timestamp // nil if the clock is still open
	Duration string     // "H:MM", only meaningful when End != nil
}

// ParseClockLine recognizes a "CLOCK: [start]" or
// "CLOCK: [start]--[end] =>  H:MM" line. The line is expected to already
// have its leading indentation trimmed.
func ParseClockLine(line string) (ClockEntry, bool) {
	const prefix = "CLOCK:"
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, prefix) {
		return ClockEntry{}, false
	}
	rest := strings.TrimSpace(trimmed[len(prefix):])
	start, n, err := ParseTimestamp(rest)
	if err != nil || start.Kind != Inactive {
		return ClockEntry{}, false
	}
	rest = rest[n:]
	entry := ClockEntry{Start: start}

	// ParseTimestamp reads "[start]--[end]" as one range timestamp, so the
	// clock's end usually arrives as start.RangeEnd.
	end := start.RangeEnd
	start.RangeEnd = nil
	rest = strings.TrimSpace(rest)
	if end == nil {
		if !strings.HasPrefix(rest, "--") {
			return entry, true
		}
		rest = rest[2:]
		var n2 int
		end, n2, err = ParseTimestamp(rest)
		if err != nil || end.Kind != Inactive {
			return entry, true
		}
		rest = rest[n2:]
	}
	entry.End = end
	rest = strings.TrimSpace(rest)
	if idx := strings.Index(rest, "=>"); idx >= 0 {
		entry.Duration = strings.TrimSpace(rest[idx+2:])
	}
	return entry, true
}

// FormatClockLine renders a ClockEntry back to its canonical text.
func FormatClockLine(e ClockEntry) string {
	if e.End == nil {
		return "CLOCK: " + Format(e.Start)
	}
	return fmt.Sprintf("CLOCK: %s--%s =>  %s", Format(e.Start), Format(e.End), e.Duration)
}

// Duration computes the "H:MM" duration between two timestamps (end - start),
// truncated to whole minutes. A negative duration is reported as negative
// minutes; callers (the mutation engine) treat that as a no-op condition.
func Duration(start, end *Timestamp) (hours, minutes int, negative bool) {
	totalMinutes := minutesSinceEpoch(end) - minutesSinceEpoch(start)
	if totalMinutes < 0 {
		totalMinutes = -totalMinutes
		negative = true
	}
	return totalMinutes / 60, totalMinutes % 60, negative
}

func minutesSinceEpoch(t *Timestamp) int {
	days := t.Date().Unix() / 86400
	return int(days)*24*60 + t.Hour*60 + t.Minute
}

// FormatDuration renders hours:minutes as "H:MM".
func FormatDuration(hours, minutes int) string {
	return strconv.Itoa(hours) + ":" + fmt.Sprintf("%02d", minutes)
}
