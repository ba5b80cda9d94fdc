package graph

import (
	"regexp"
	"strings"
)

// Citation is one extracted citation-key occurrence.
type Citation struct {
	Pos int
	Key string
}

// citeBracket matches the pandoc/org-cite bracketed form:
// "[cite[/STYLE]:@key;@key;…]".
var citeBracket = regexp.MustCompile(`\[cite(?:/[A-Za-z-]+)?:([^\]]*)\]`)

// citeOrgRef matches the org-ref inline form: an optional word-character
// prefix, case-insensitive "cite", an optional word-character suffix, a
// colon, then one or more comma-separated keys. E.g. "citep:smith2020" or
// "parencite:smith2020,jones2021".
var citeOrgRef = regexp.MustCompile(`(?i)\b\w*cite\w*:([A-Za-z0-9_:./-]+(?:,[A-Za-z0-9_:./-]+)*)`)

// ExtractCitations scans content for both citation forms, per SPEC_FULL.md
// §4.H. Each match's Pos is the byte offset of the opening bracket or the
// start of the org-ref keyword.
func ExtractCitations(content string) []Citation {
	var out []Citation

	for _, m := range citeBracket.FindAllStringSubmatchIndex(content, -1) {
		pos := m[0]
		keys := content[m[2]:m[3]]
		for _, k := range strings.Split(keys, ";") {
			k = strings.TrimSpace(k)
			k = strings.TrimPrefix(k, "@")
			if k != "" {
				out = append(out, Citation{Pos: pos, Key: k})
			}
		}
	}

	for _, m := range citeOrgRef.FindAllStringSubmatchIndex(content, -1) {
		pos := m[0]
		keys := content[m[2]:m[3]]
		for _, k := range strings.Split(keys, ",") {
			// A key at the end of a sentence does not keep the full stop.
			k = strings.TrimRight(strings.TrimSpace(k), ".")
			if k != "" {
				out = append(out, Citation{Pos: pos, Key: k})
			}
		}
	}

	return out
}
