package orgtime

import "strings"

// ParsePriority recognizes a leading "[#X]" priority cookie, returning the
// letter and the number of bytes consumed. ok is false if s does not begin
// with a well-formed priority cookie.
func ParsePriority(s string) (letter byte, n int, ok bool) {
	if len(s) < 4 || s[0] != '[' || s[1] != '#' || s[3] != ']' {
		return 0, 0, false
	}
	c := s[2]
	if c < 'A' || c > 'Z' {
		return 0, 0, false
	}
	return c, 4, true
}

// FormatPriority renders a priority letter as "[#X]".
func FormatPriority(letter byte) string {
	return "[#" + string(letter) + "]"
}

// ParseTagList recognizes a trailing ":tag1:tag2:" cluster at the end of a
// headline title line (after trailing whitespace has been trimmed by the
// caller). It returns the tags in order and the title with the tag cluster
// removed (trailing spaces trimmed).
func ParseTagList(titleLine string) (title string, tags []string) {
	trimmed := strings.TrimRight(titleLine, " \t")
	lastSpace := strings.LastIndexAny(trimmed, " \t")
	token := trimmed
	if lastSpace >= 0 {
		token = trimmed[lastSpace+1:]
	}
	if !isTagCluster(token) {
		return trimmed, nil
	}
	for _, tag := range strings.Split(strings.Trim(token, ":"), ":") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return trimmed, nil
	}
	rest := trimmed
	if lastSpace >= 0 {
		rest = strings.TrimRight(trimmed[:lastSpace], " \t")
	} else {
		rest = ""
	}
	return rest, tags
}

func isTagCluster(s string) bool {
	if len(s) < 2 || s[0] != ':' || s[len(s)-1] != ':' {
		return false
	}
	for _, part := range strings.Split(s[1:len(s)-1], ":") {
		if part == "" || !validTagChars(part) {
			return false
		}
	}
	return true
}

func validTagChars(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTagChar(s[i]) {
			return false
		}
	}
	return true
}

func isTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '@'
}

// FormatTagList renders a tag list as ":tag1:tag2:", or "" if tags is empty.
func FormatTagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return ":" + strings.Join(tags, ":") + ":"
}
