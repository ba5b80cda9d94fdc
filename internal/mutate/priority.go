package mutate

import (
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/section"
)

// SetPriority implements SPEC_FULL.md §4.E.5: inserts or replaces the
// "[#X]" cookie between the TODO keyword and the title (or immediately
// after the leading stars if there is no TODO keyword).
func SetPriority(content string, pos int, fp *orgconf.FilePolicy, letter byte) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	hp := parseHeadlineLine(seg.HeadlineLine, fp.ActiveKeywords, fp.DoneKeywords)
	hp.HasPriority = true
	hp.Priority = letter
	return replaceHeadlineLine(content, seg, hp), nil
}

// ClearPriority implements SPEC_FULL.md §4.E.5: removes the "[#X]" cookie
// and its separating space, leaving no duplicated whitespace behind.
func ClearPriority(content string, pos int, fp *orgconf.FilePolicy) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	hp := parseHeadlineLine(seg.HeadlineLine, fp.ActiveKeywords, fp.DoneKeywords)
	if !hp.HasPriority {
		return content, nil
	}
	hp.HasPriority = false
	hp.Priority = 0
	return replaceHeadlineLine(content, seg, hp), nil
}
