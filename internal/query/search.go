package query

import (
	"regexp"
	"strings"

	"github.com/jra3/orgctl/internal/orgdoc"
)

// SearchMatch is one regex hit, attributed to the nearest preceding
// headline (HeadlinePos == -1 if the match occurs before the first
// headline in the file).
type SearchMatch struct {
	File        string
	Line        int // 1-based
	Text        string
	HeadlinePos int
}

// CompileSearch compiles pattern as an RE2 regular expression.
func CompileSearch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

// Search scans content line by line for re, attributing each match to the
// nearest headline at or before that line's byte offset.
func Search(file, content string, re *regexp.Regexp, doc *orgdoc.Document) []SearchMatch {
	var matches []SearchMatch
	hIdx := 0
	curPos := -1
	offset := 0
	lineNo := 0
	for {
		lineNo++
		nl := strings.IndexByte(content[offset:], '\n')
		var line string
		if nl < 0 {
			line = content[offset:]
		} else {
			line = content[offset : offset+nl]
		}

		for hIdx < len(doc.Headlines) && doc.Headlines[hIdx].Pos <= offset {
			curPos = doc.Headlines[hIdx].Pos
			hIdx++
		}

		if re.MatchString(line) {
			matches = append(matches, SearchMatch{
				File:        file,
				Line:        lineNo,
				Text:        line,
				HeadlinePos: curPos,
			})
		}

		if nl < 0 {
			break
		}
		offset += nl + 1
		if offset >= len(content) {
			break
		}
	}
	return matches
}
