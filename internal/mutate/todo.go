package mutate

import (
	"fmt"
	"time"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// SetTodoState implements SPEC_FULL.md §4.E.1: transition a headline's
// TODO keyword, or perform repeat advancement when the target is a
// done-state and the headline carries a repeating planning timestamp.
// target == "" clears the keyword.
func SetTodoState(content string, pos int, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, target string, now time.Time) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	hp := parseHeadlineLine(seg.HeadlineLine, fp.ActiveKeywords, fp.DoneKeywords)
	oldKw := hp.Todo
	logging := orgconf.EffectiveLogging(fp, doc, h)

	if isDoneKeyword(target, fp.DoneKeywords) {
		if ts, which := repeatingTimestamp(h); ts != nil {
			return repeatAdvance(content, seg, fp, doc, h, hp, which, ts, logging, now, target)
		}
	}

	hp.Todo = target
	content = replaceHeadlineLine(content, seg, hp)
	// re-split: the headline line length changed, every later offset shifted.
	seg, err = section.Split(content, seg.HeadlineStart)
	if err != nil {
		return "", err
	}

	wasDone := isDoneKeyword(oldKw, fp.DoneKeywords)
	nowDone := isDoneKeyword(target, fp.DoneKeywords)

	if !logging.Suppressed {
		if nowDone && !wasDone {
			content = setClosed(content, seg.HeadlineStart, timestampAt(now))
		} else if wasDone && !nowDone {
			content = clearClosed(content, seg.HeadlineStart)
		}
	}

	seg, err = section.Split(content, seg.HeadlineStart)
	if err != nil {
		return "", err
	}

	doneAction := logging.Done
	if override, ok := keywordLogOverride(fp, target, oldKw); ok {
		doneAction = override
	}
	if !logging.Suppressed && (doneAction == "time" || doneAction == "note") && oldKw != target {
		entry := fmt.Sprintf(`- State %q from %q %s`, target, oldKw, orgtime.Format(timestampAt(now)))
		content = prependLogbookEntry(content, seg, entry)
	}

	return content, nil
}

// keywordLogOverride implements spec.md §4.D's per-keyword logging
// indicators: the entering keyword's "@"/"!" takes precedence, then the
// departing keyword's, over the file's blanket logging policy. ok is false
// when neither keyword declares an indicator, leaving the caller's policy
// field untouched.
func keywordLogOverride(fp *orgconf.FilePolicy, target, oldName string) (string, bool) {
	if kw, found := lookupKeyword(fp, target); found {
		if s, ok := logActionString(kw.LogEnter); ok {
			return s, true
		}
	}
	if kw, found := lookupKeyword(fp, oldName); found {
		if s, ok := logActionString(kw.LogLeave); ok {
			return s, true
		}
	}
	return "", false
}

func lookupKeyword(fp *orgconf.FilePolicy, name string) (orgtime.Keyword, bool) {
	for _, kw := range fp.ActiveKeywords {
		if kw.Name == name {
			return kw, true
		}
	}
	for _, kw := range fp.DoneKeywords {
		if kw.Name == name {
			return kw, true
		}
	}
	return orgtime.Keyword{}, false
}

func logActionString(a orgtime.LogAction) (string, bool) {
	switch a {
	case orgtime.LogNote:
		return "note", true
	case orgtime.LogTime:
		return "time", true
	default:
		return "", false
	}
}

func repeatingTimestamp(h *orgdoc.Headline) (*orgtime.Timestamp, string) {
	if h.Planning == nil {
		return nil, ""
	}
	if h.Planning.Scheduled != nil && h.Planning.Scheduled.Repeater != nil {
		return h.Planning.Scheduled, "SCHEDULED"
	}
	if h.Planning.Deadline != nil && h.Planning.Deadline.Repeater != nil {
		return h.Planning.Deadline, "DEADLINE"
	}
	return nil, ""
}

func repeatAdvance(content string, seg *section.Segments, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, hp headlineParts, which string, ts *orgtime.Timestamp, logging orgconf.LoggingPolicy, now time.Time, target string) (string, error) {
	repeatTo, ok := orgconf.InheritedProperty(fp, doc, h, "REPEAT_TO_STATE")
	if !ok || repeatTo == "" {
		repeatTo = hp.Todo
	}

	shifted := orgtime.ShiftRepeating(ts, now)
	previousKeyword := hp.Todo

	hp.Todo = repeatTo
	content = replaceHeadlineLine(content, seg, hp)
	seg, err := section.Split(content, seg.HeadlineStart)
	if err != nil {
		return "", err
	}

	content = replacePlanningTimestamp(content, seg, which, shifted)
	seg, err = section.Split(content, seg.HeadlineStart)
	if err != nil {
		return "", err
	}

	content = setProperty(content, seg, "LAST_REPEAT", orgtime.Format(timestampAt(now)))
	seg, err = section.Split(content, seg.HeadlineStart)
	if err != nil {
		return "", err
	}

	repeatAction := logging.Repeat
	if override, ok := keywordLogOverride(fp, target, previousKeyword); ok {
		repeatAction = override
	}
	if !logging.Suppressed && (repeatAction == "time" || repeatAction == "note") {
		entry := fmt.Sprintf("- State %q from %q %s", target, previousKeyword, orgtime.Format(timestampAt(now)))
		content = prependLogbookEntry(content, seg, entry)
	}

	return content, nil
}
