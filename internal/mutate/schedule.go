package mutate

import (
	"fmt"
	"strings"
	"time"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

type planningFields struct {
	Scheduled *orgtime.Timestamp
	Deadline  *orgtime.Timestamp
	Closed    *orgtime.Timestamp
}

func parsePlanningFields(seg *section.Segments) planningFields {
	var f planningFields
	if !seg.HasPlanning {
		return f
	}
	trimmed := strings.TrimLeft(seg.PlanningLine, " \t")
	for _, lbl := range []struct {
		name string
		dst  **orgtime.Timestamp
	}{
		{"SCHEDULED:", &f.Scheduled},
		{"DEADLINE:", &f.Deadline},
		{"CLOSED:", &f.Closed},
	} {
		idx := strings.Index(trimmed, lbl.name)
		if idx < 0 {
			continue
		}
		rest := strings.TrimLeft(trimmed[idx+len(lbl.name):], " \t")
		if ts, _, err := orgtime.ParseTimestamp(rest); err == nil {
			*lbl.dst = ts
		}
	}
	return f
}

func formatPlanningLine(f planningFields) string {
	var parts []string
	if f.Scheduled != nil {
		parts = append(parts, "SCHEDULED: "+orgtime.Format(f.Scheduled))
	}
	if f.Deadline != nil {
		parts = append(parts, "DEADLINE: "+orgtime.Format(f.Deadline))
	}
	if f.Closed != nil {
		parts = append(parts, "CLOSED: "+orgtime.Format(f.Closed))
	}
	return strings.Join(parts, " ")
}

// writePlanningFields replaces seg's planning line with f's rendering,
// inserting a new planning line if none exists and f is non-empty, or
// removing the line entirely if f ends up empty.
func writePlanningFields(content string, seg *section.Segments, f planningFields) string {
	line := formatPlanningLine(f)
	switch {
	case seg.HasPlanning && line == "":
		return section.Splice(content, seg.PlanningStart, seg.PlanningEnd, "")
	case seg.HasPlanning:
		return section.Splice(content, seg.PlanningStart, seg.PlanningTextEnd(), line)
	case line == "":
		return content
	default:
		return section.Splice(content, seg.HeadlineEnd, seg.HeadlineEnd, line+"\n")
	}
}

func setClosed(content string, headlineStart int, ts *orgtime.Timestamp) string {
	seg, err := section.Split(content, headlineStart)
	if err != nil {
		return content
	}
	f := parsePlanningFields(seg)
	f.Closed = ts
	return writePlanningFields(content, seg, f)
}

func clearClosed(content string, headlineStart int) string {
	seg, err := section.Split(content, headlineStart)
	if err != nil {
		return content
	}
	f := parsePlanningFields(seg)
	if f.Closed == nil {
		return content
	}
	f.Closed = nil
	return writePlanningFields(content, seg, f)
}

// replacePlanningTimestamp sets field "SCHEDULED" or "DEADLINE" to ts
// (already-shifted) without disturbing the other planning fields.
func replacePlanningTimestamp(content string, seg *section.Segments, which string, ts *orgtime.Timestamp) string {
	f := parsePlanningFields(seg)
	switch which {
	case "SCHEDULED":
		f.Scheduled = ts
	case "DEADLINE":
		f.Deadline = ts
	}
	return writePlanningFields(content, seg, f)
}

// SetScheduled implements SPEC_FULL.md §4.E.2 for the SCHEDULED field.
// ts == nil clears it. If a prior timestamp existed and the reschedule
// logging policy is active, a logbook entry records the old value.
func SetScheduled(content string, pos int, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, ts *orgtime.Timestamp, now time.Time) (string, error) {
	return setPlanningField(content, pos, fp, doc, h, "SCHEDULED", ts, now)
}

// SetDeadline implements SPEC_FULL.md §4.E.2 for the DEADLINE field.
func SetDeadline(content string, pos int, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, ts *orgtime.Timestamp, now time.Time) (string, error) {
	return setPlanningField(content, pos, fp, doc, h, "DEADLINE", ts, now)
}

func setPlanningField(content string, pos int, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, which string, ts *orgtime.Timestamp, now time.Time) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	f := parsePlanningFields(seg)
	var old *orgtime.Timestamp
	switch which {
	case "SCHEDULED":
		old = f.Scheduled
		f.Scheduled = ts
	case "DEADLINE":
		old = f.Deadline
		f.Deadline = ts
	}
	content = writePlanningFields(content, seg, f)

	logging := orgconf.EffectiveLogging(fp, doc, h)
	policy := logging.Reschedule
	verb := "Rescheduled from"
	if which == "DEADLINE" {
		policy = logging.Redeadline
		verb = "New deadline from"
	}
	if !logging.Suppressed && old != nil && (policy == "time" || policy == "note") {
		seg, err = section.Split(content, pos)
		if err != nil {
			return "", err
		}
		entry := fmt.Sprintf("- %s %q on %s", verb, orgtime.Format(old), orgtime.Format(timestampAt(now)))
		content = prependLogbookEntry(content, seg, entry)
	}
	return content, nil
}
