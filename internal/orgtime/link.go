package orgtime

import "strings"

// Link is a parsed [[...]] link occurrence, independent of its position in
// the document (the document parser attaches byte position and containing
// headline separately).
type Link struct {
	Type         string // "id", "file", "https", "roam", "fuzzy", "custom-id", ...
	Path         string
	Description  string
	HasDesc      bool
	SearchOption string
	HasSearch    bool
}

// ParseLink recognizes a single "[[...]]" link starting at the beginning of
// s. ok is false if s does not begin with a well-formed link; n is the
// number of bytes consumed on success.
func ParseLink(s string) (link Link, n int, ok bool) {
	if !strings.HasPrefix(s, "[[") {
		return Link{}, 0, false
	}
	end := strings.Index(s, "]]")
	if end < 0 {
		return Link{}, 0, false
	}
	inner := s[2:end]
	n = end + 2

	var target, desc string
	hasDesc := false
	if idx := strings.Index(inner, "]["); idx >= 0 {
		target = inner[:idx]
		desc = inner[idx+2:]
		hasDesc = true
	} else {
		target = inner
	}
	if target == "" {
		return Link{}, 0, false
	}

	link = classifyTarget(target)
	link.Description = desc
	link.HasDesc = hasDesc
	return link, n, true
}

func classifyTarget(target string) Link {
	switch {
	case strings.HasPrefix(target, "*"):
		return Link{Type: "fuzzy", Path: target[1:]}
	case strings.HasPrefix(target, "#"):
		return Link{Type: "custom-id", Path: target[1:]}
	}
	if idx := strings.Index(target, ":"); idx > 0 {
		typ := target[:idx]
		path := target[idx+1:]
		if typ == "id" {
			if sidx := strings.Index(path, "::"); sidx >= 0 {
				return Link{Type: "id", Path: path[:sidx], SearchOption: path[sidx+2:], HasSearch: true}
			}
		}
		if sidx := strings.Index(path, "::"); sidx >= 0 {
			return Link{Type: typ, Path: path[:sidx], SearchOption: path[sidx+2:], HasSearch: true}
		}
		return Link{Type: typ, Path: path}
	}
	// Typeless: treated as a fuzzy heading search for the bare text form.
	return Link{Type: "fuzzy", Path: target}
}

// FormatLink renders a Link back to its "[[...]]" form.
func FormatLink(l Link) string {
	var target string
	switch l.Type {
	case "fuzzy":
		target = "*" + l.Path
	case "custom-id":
		target = "#" + l.Path
	default:
		target = l.Type + ":" + l.Path
	}
	if l.HasSearch {
		target += "::" + l.SearchOption
	}
	if l.HasDesc {
		return "[[" + target + "][" + l.Description + "]]"
	}
	return "[[" + target + "]]"
}

// LinkAbbrev is a #+LINK: abbreviation definition.
type LinkAbbrev struct {
	Abbrev   string
	Template string
}

// ExpandAbbrev applies a link-type abbreviation template to a path: %s is
// substituted with path; if the template contains no %s, path is appended
// (this is the documented, intentionally-kept current behavior — see spec §9
// open question on Links.resolveLink).
func ExpandAbbrev(template, path string) string {
	if strings.Contains(template, "%s") {
		return strings.ReplaceAll(template, "%s", path)
	}
	return template + path
}
