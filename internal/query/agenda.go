// Package query implements the in-memory query layer (SPEC_FULL.md
// component F): agenda collection, the headline filter pipeline, virtual
// properties, regex search, and link resolution, all operating over
// already-parsed internal/orgdoc documents.
package query

import (
	"time"

	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// maxRangeDays caps a range timestamp's per-day expansion, per spec.md
// §4.F, to prevent pathological expansion from a mistyped far-future end
// date.
const maxRangeDays = 366

// AgendaItemType names (not type names).
const (
	AgendaScheduled = "scheduled"
	AgendaDeadline  = "deadline"
)

// AgendaItem is one day's occurrence of a planning timestamp.
type AgendaItem struct {
	File        string
	HeadlinePos int
	Headline    *orgdoc.Headline
	Type        string
	Date        time.Time
	Raw         *orgtime.Timestamp
}

// CollectAgenda emits one AgendaItem per day for every SCHEDULED/DEADLINE
// planning timestamp in doc, expanding ranges up to maxRangeDays.
func CollectAgenda(file string, doc *orgdoc.Document) []AgendaItem {
	var items []AgendaItem
	for _, h := range doc.Headlines {
		if h.Planning == nil {
			continue
		}
		if h.Planning.Scheduled != nil {
			items = append(items, expandTimestamp(file, h, AgendaScheduled, h.Planning.Scheduled)...)
		}
		if h.Planning.Deadline != nil {
			items = append(items, expandTimestamp(file, h, AgendaDeadline, h.Planning.Deadline)...)
		}
	}
	return items
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func expandTimestamp(file string, h *orgdoc.Headline, typ string, ts *orgtime.Timestamp) []AgendaItem {
	start := dateOnly(ts.Date())
	end := start
	if ts.RangeEnd != nil {
		end = dateOnly(ts.RangeEnd.Date())
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > maxRangeDays {
		days = maxRangeDays
	}
	items := make([]AgendaItem, 0, days)
	for i := 0; i < days; i++ {
		items = append(items, AgendaItem{
			File:        file,
			HeadlinePos: h.Pos,
			Headline:    h,
			Type:        typ,
			Date:        start.AddDate(0, 0, i),
			Raw:         ts,
		})
	}
	return items
}

// FilterDateRange keeps items whose Date falls in the half-open range
// [start, end).
func FilterDateRange(items []AgendaItem, start, end time.Time) []AgendaItem {
	var out []AgendaItem
	for _, it := range items {
		if !it.Date.Before(start) && it.Date.Before(end) {
			out = append(out, it)
		}
	}
	return out
}
