package mutate

import (
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/section"
)

// AddTag implements SPEC_FULL.md §4.E.3: appends tag if absent. If tag
// belongs to a #+TAGS: mutual-exclusion group, any other tag from that
// same group already present on the headline is removed first.
func AddTag(content string, pos int, fp *orgconf.FilePolicy, tag string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	hp := parseHeadlineLine(seg.HeadlineLine, fp.ActiveKeywords, fp.DoneKeywords)

	for _, t := range hp.Tags {
		if t == tag {
			return content, nil
		}
	}

	if group, ok := orgconf.MutexGroupFor(fp.TagGroups, tag); ok {
		var kept []string
		for _, t := range hp.Tags {
			inGroup := false
			for _, g := range group.Tags {
				if t == g {
					inGroup = true
					break
				}
			}
			if !inGroup {
				kept = append(kept, t)
			}
		}
		hp.Tags = kept
	}

	hp.Tags = append(hp.Tags, tag)
	return replaceHeadlineLine(content, seg, hp), nil
}

// RemoveTag implements SPEC_FULL.md §4.E.3: strips tag, removing the
// entire tag cluster (and any preceding separating space) if it becomes
// empty, so a title with no tags carries no trailing ":" cluster.
func RemoveTag(content string, pos int, fp *orgconf.FilePolicy, tag string) (string, error) {
	seg, err := section.Split(content, pos)
	if err != nil {
		return "", err
	}
	hp := parseHeadlineLine(seg.HeadlineLine, fp.ActiveKeywords, fp.DoneKeywords)

	var kept []string
	for _, t := range hp.Tags {
		if t != tag {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(hp.Tags) {
		return content, nil
	}
	hp.Tags = kept
	return replaceHeadlineLine(content, seg, hp), nil
}
