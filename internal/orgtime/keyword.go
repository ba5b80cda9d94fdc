package orgtime

import "strings"

// LogAction is what a TODO-keyword transition logs, per the per-keyword
// logging indicator syntax "KW(key@/!)".
type LogAction int

const (
	LogNone LogAction = iota
	LogNote
	LogTime
)

// Keyword is one parsed token from a "#+TODO:"/"#+SEQ_TODO:" line, with its
// optional fast-select key and on-enter/on-leave logging indicators.
type Keyword struct {
	Name     string
	FastKey  byte // 0 if absent
	LogEnter LogAction
	LogLeave LogAction
}

// ParseKeywordSequence parses the value of a #+TODO:/#+SEQ_TODO: line into
// its active (not-done) and done keyword groups, split on "|". If no "|" is
// present, every keyword is treated as active and there are no done states.
func ParseKeywordSequence(value string) (active, done []Keyword) {
	fields := strings.Fields(value)
	sawBar := false
	for _, f := range fields {
		if f == "|" {
			sawBar = true
			continue
		}
		kw := parseOneKeyword(f)
		if sawBar {
			done = append(done, kw)
		} else {
			active = append(active, kw)
		}
	}
	return active, done
}

// parseOneKeyword strips the "(key@/!)" parenthetical from a single keyword
// token as stored, and classifies the logging indicators.
func parseOneKeyword(token string) Keyword {
	open := strings.IndexByte(token, '(')
	if open < 0 {
		return Keyword{Name: token}
	}
	name := token[:open]
	closeIdx := strings.IndexByte(token[open:], ')')
	if closeIdx < 0 {
		return Keyword{Name: name}
	}
	inner := token[open+1 : open+closeIdx]
	kw := Keyword{Name: name}
	if inner == "" {
		return kw
	}

	var enterPart, leavePart string
	if idx := strings.IndexByte(inner, '/'); idx >= 0 {
		enterPart = inner[:idx]
		leavePart = inner[idx+1:]
	} else {
		enterPart = inner
	}

	// The fast key is the leading character of enterPart when it is not
	// itself a logging indicator.
	if len(enterPart) > 0 && enterPart[0] != '@' && enterPart[0] != '!' {
		kw.FastKey = enterPart[0]
		enterPart = enterPart[1:]
	}
	kw.LogEnter = classifyIndicator(enterPart)
	kw.LogLeave = classifyIndicator(leavePart)
	return kw
}

func classifyIndicator(s string) LogAction {
	switch {
	case strings.Contains(s, "@"):
		return LogNote
	case strings.Contains(s, "!"):
		return LogTime
	default:
		return LogNone
	}
}
