package orgconf

import (
	"strings"

	"github.com/jra3/orgctl/internal/config"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// OutlinePathSeparator is the byte joining ancestor titles into an
// outline_path value (0x1F, the ASCII unit separator).
const OutlinePathSeparator = "\x1f"

// ResolveFile merges the base configuration with a document's file-level
// settings into the effective per-file policy.
func ResolveFile(base *config.Config, doc *orgdoc.Document) *FilePolicy {
	fp := &FilePolicy{
		Logging:             base.Logging,
		DeadlineWarningDays: base.DeadlineWarningDays,
		InheritTags:         base.Inherit.Tags,
		InheritProperties:   base.Inherit.Properties,
		PropertyAllowList:   append([]string(nil), base.Inherit.PropertyAllowList...),
		TagsExcludeFromInheritance: append([]string(nil), base.Inherit.TagsExcludeFromInheritance...),
		TagFastKeys:         map[string]byte{},
	}

	if letter, ok := firstByteUpper(base.Priority.Highest); ok {
		fp.PriorityHighest = letter
	} else {
		fp.PriorityHighest = 'A'
	}
	if letter, ok := firstByteUpper(base.Priority.Lowest); ok {
		fp.PriorityLowest = letter
	} else {
		fp.PriorityLowest = 'C'
	}
	if letter, ok := firstByteUpper(base.Priority.Default); ok {
		fp.PriorityDefault = letter
	} else {
		fp.PriorityDefault = 'B'
	}

	active, done := orgtime.ParseKeywordSequence(base.Todo.Sequence)
	fp.ActiveKeywords, fp.DoneKeywords = active, done

	if len(doc.TodoActive) > 0 || len(doc.TodoDone) > 0 {
		fp.ActiveKeywords, fp.DoneKeywords = doc.TodoActive, doc.TodoDone
	}

	for _, kl := range doc.Keywords {
		switch strings.ToUpper(kl.Key) {
		case "STARTUP":
			for _, word := range strings.Fields(kl.Value) {
				applyStartupWord(&fp.Logging, word)
			}
		case "PRIORITIES":
			fields := strings.Fields(kl.Value)
			if len(fields) >= 1 {
				if l, ok := firstByteUpper(fields[0]); ok {
					fp.PriorityHighest = l
				}
			}
			if len(fields) >= 2 {
				if l, ok := firstByteUpper(fields[1]); ok {
					fp.PriorityLowest = l
				}
			}
			if len(fields) >= 3 {
				if l, ok := firstByteUpper(fields[2]); ok {
					fp.PriorityDefault = l
				}
			}
		case "ARCHIVE":
			fp.ArchiveDirective = strings.TrimSpace(kl.Value)
		case "TAGS":
			groups, keys := ParseTagsLine(kl.Value)
			fp.TagGroups = append(fp.TagGroups, groups...)
			for k, v := range keys {
				fp.TagFastKeys[k] = v
			}
		}
	}

	return fp
}

func firstByteUpper(s string) (byte, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	return c, true
}

// Ancestors returns h's ancestor headlines, nearest parent first, by
// walking doc.Headlines backward from h and picking each headline whose
// level is exactly one less than the current frontier.
func Ancestors(doc *orgdoc.Document, h *orgdoc.Headline) []*orgdoc.Headline {
	idx := -1
	for i, hh := range doc.Headlines {
		if hh == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var chain []*orgdoc.Headline
	level := h.Level
	for i := idx - 1; i >= 0 && level > 1; i-- {
		if doc.Headlines[i].Level == level-1 {
			chain = append(chain, doc.Headlines[i])
			level--
		}
	}
	return chain
}

// OutlinePath joins ancestor titles (root first) and h's own title with
// the outline-path separator.
func OutlinePath(doc *orgdoc.Document, h *orgdoc.Headline) string {
	anc := Ancestors(doc, h)
	titles := make([]string, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		titles = append(titles, anc[i].Title)
	}
	titles = append(titles, h.Title)
	return strings.Join(titles, OutlinePathSeparator)
}

// alwaysInherited properties ignore the base Inherit.Properties flag and
// allow-list entirely.
var alwaysInherited = map[string]bool{"CATEGORY": true, "ARCHIVE": true, "LOGGING": true}

func lookupProperty(props []orgtime.Property, key string) (string, bool) {
	for _, p := range props {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// InheritedProperty resolves a property's effective value at headline h:
// own drawer first, then the nearest ancestor drawer, then the file-level
// drawer. CATEGORY, ARCHIVE, and LOGGING are always eligible for
// inheritance; other properties only inherit when fp.InheritProperties is
// set and key is in fp.PropertyAllowList.
func InheritedProperty(fp *FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, key string) (string, bool) {
	if v, ok := lookupProperty(h.Properties, key); ok {
		return v, true
	}
	if !alwaysInherited[strings.ToUpper(key)] {
		if !fp.InheritProperties || !contains(fp.PropertyAllowList, key) {
			return "", false
		}
	}
	for _, a := range Ancestors(doc, h) {
		if v, ok := lookupProperty(a.Properties, key); ok {
			return v, true
		}
	}
	if v, ok := lookupProperty(doc.FileProperties, key); ok {
		return v, true
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// EffectiveLogging resolves the logging policy for a transition at
// headline h, honoring a LOGGING=nil ancestor property.
func EffectiveLogging(fp *FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) LoggingPolicy {
	if v, ok := InheritedProperty(fp, doc, h, "LOGGING"); ok && v == "nil" {
		return LoggingPolicy{Suppressed: true}
	}
	return LoggingPolicy{
		Done:       fp.Logging.Done,
		Repeat:     fp.Logging.Repeat,
		Reschedule: fp.Logging.Reschedule,
		Redeadline: fp.Logging.Redeadline,
		Refile:     fp.Logging.Refile,
	}
}

func excludeTags(tags, exclude []string) []string {
	if len(exclude) == 0 {
		return tags
	}
	var out []string
	for _, t := range tags {
		if !contains(exclude, t) {
			out = append(out, t)
		}
	}
	return out
}

// AllTags returns h's direct tags followed by inherited ancestor and
// file-level tags, deduplicated so a direct tag always wins over an
// inherited duplicate. Inheritance is skipped entirely when
// fp.InheritTags is false.
func AllTags(fp *FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) []string {
	seen := map[string]bool{}
	var out []string
	add := func(tags []string) {
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	add(h.Tags)
	if fp.InheritTags {
		for _, a := range Ancestors(doc, h) {
			add(excludeTags(a.Tags, fp.TagsExcludeFromInheritance))
		}
		add(excludeTags(doc.FileTags, fp.TagsExcludeFromInheritance))
	}
	return out
}

// Category resolves the CATEGORY virtual property: own/ancestor/file
// property if set, else "" (no fallback to the file's base name is
// applied; query.VirtualProperty then reports CATEGORY as absent).
func Category(fp *FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) string {
	v, _ := InheritedProperty(fp, doc, h, "CATEGORY")
	return v
}
