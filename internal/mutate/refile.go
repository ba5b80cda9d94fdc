package mutate

import (
	"fmt"
	"strings"
	"time"

	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

func firstLine(s string) (string, int) {
	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		return s, len(s)
	}
	return s[:idx], idx + 1
}

func subtreeLevel(subtree string) int {
	line, _ := firstLine(subtree)
	return orgtime.HeadlineStars(line)
}

// adjustLevels shifts every headline line inside subtree by delta,
// clamping any resulting level below 1 up to 1. Non-headline lines, and
// the bytes of each headline line after its leading stars, are untouched.
func adjustLevels(subtree string, delta int) string {
	if delta == 0 {
		return subtree
	}
	lines := strings.Split(subtree, "\n")
	for i, line := range lines {
		if lvl := orgtime.HeadlineStars(line); lvl > 0 {
			newLvl := lvl + delta
			if newLvl < 1 {
				newLvl = 1
			}
			lines[i] = strings.Repeat("*", newLvl) + line[lvl:]
		}
	}
	return strings.Join(lines, "\n")
}

func needsLeadingNewline(s string, pos int) bool {
	return pos != 0 && s[pos-1] != '\n'
}

// insertSubtree splices chunk into target at insertPos, adding a leading
// or trailing newline only when needed to keep a clean line boundary.
func insertSubtree(target string, insertPos int, chunk string) string {
	leading := ""
	if needsLeadingNewline(target, insertPos) {
		leading = "\n"
	}
	trailing := ""
	if insertPos < len(target) && !strings.HasSuffix(chunk, "\n") {
		trailing = "\n"
	}
	return section.Splice(target, insertPos, insertPos, leading+chunk+trailing)
}

func addRefiledNote(subtree string, now time.Time) string {
	entry := "- Refiled on " + orgtime.Format(timestampAt(now))
	seg, err := section.Split(subtree, 0)
	if err != nil {
		return subtree
	}
	return prependLogbookEntry(subtree, seg, entry)
}

// prepareRefiledSubtree extracts the subtree at pos from content, removes
// it, and returns the remaining content plus the subtree text shifted to
// become a child of a headline at targetLevel (or a level-1 top-level
// entry when targetLevel == 0), with a "Refiled on" note appended when
// logRefile is set.
func prepareRefiledSubtree(content string, pos int, targetLevel int, logRefile bool, now time.Time) (remaining string, subtree string, err error) {
	end, err := section.SubtreeEnd(content, pos)
	if err != nil {
		return "", "", err
	}
	subtree = content[pos:end]
	remaining = content[:pos] + content[end:]

	desiredLevel := targetLevel + 1
	if targetLevel == 0 {
		desiredLevel = 1
	}
	delta := desiredLevel - subtreeLevel(subtree)
	subtree = adjustLevels(subtree, delta)

	if logRefile {
		subtree = addRefiledNote(subtree, now)
	}
	return remaining, subtree, nil
}

// RefileAcrossFiles implements SPEC_FULL.md §4.E.8 for a source and target
// in different files. hasTarget == false means "append at level 1 at end
// of file".
func RefileAcrossFiles(sourceContent string, sourcePos int, targetContent string, targetPos int, hasTarget bool, logRefile bool, now time.Time) (newSource, newTarget string, err error) {
	targetLevel := 0
	if hasTarget {
		line, _ := firstLine(targetContent[targetPos:])
		targetLevel = orgtime.HeadlineStars(line)
		if targetLevel == 0 {
			return "", "", fmt.Errorf("mutate: refile target position %d is not a headline", targetPos)
		}
	}

	remaining, subtree, err := prepareRefiledSubtree(sourceContent, sourcePos, targetLevel, logRefile, now)
	if err != nil {
		return "", "", err
	}

	insertPos := len(targetContent)
	if hasTarget {
		insertPos, err = section.SubtreeEnd(targetContent, targetPos)
		if err != nil {
			return "", "", err
		}
	}
	newTarget = insertSubtree(targetContent, insertPos, subtree)
	return remaining, newTarget, nil
}

// RefileWithinFile implements SPEC_FULL.md §4.E.8 for a source and target
// headline in the same file: "source and target share state; compute the
// final buffer in one pass."
func RefileWithinFile(content string, sourcePos int, targetPos int, hasTarget bool, logRefile bool, now time.Time) (string, error) {
	sourceEnd, err := section.SubtreeEnd(content, sourcePos)
	if err != nil {
		return "", err
	}
	if hasTarget && targetPos >= sourcePos && targetPos < sourceEnd {
		return "", fmt.Errorf("mutate: refile target %d lies inside the source subtree", targetPos)
	}

	targetLevel := 0
	if hasTarget {
		line, _ := firstLine(content[targetPos:])
		targetLevel = orgtime.HeadlineStars(line)
		if targetLevel == 0 {
			return "", fmt.Errorf("mutate: refile target position %d is not a headline", targetPos)
		}
	}

	remaining, subtree, err := prepareRefiledSubtree(content, sourcePos, targetLevel, logRefile, now)
	if err != nil {
		return "", err
	}

	adjustedTargetPos := targetPos
	if hasTarget && targetPos > sourcePos {
		adjustedTargetPos -= sourceEnd - sourcePos
	}

	insertPos := len(remaining)
	if hasTarget {
		insertPos, err = section.SubtreeEnd(remaining, adjustedTargetPos)
		if err != nil {
			return "", err
		}
	}
	return insertSubtree(remaining, insertPos, subtree), nil
}
