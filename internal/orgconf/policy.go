// Package orgconf implements the configuration resolver (SPEC_FULL.md
// component D): it merges the base configuration (internal/config) with
// file-level org settings (#+TODO:, #+STARTUP:, #+PRIORITIES:, #+ARCHIVE:,
// #+TAGS:) and ancestor property-drawer inheritance to produce the
// effective policy the mutation and query layers act against.
package orgconf

import (
	"strings"

	"github.com/jra3/orgctl/internal/config"
	"github.com/jra3/orgctl/internal/orgtime"
)

// TagGroup is a mutual-exclusion tag group declared with "#+TAGS: {a : b}".
type TagGroup struct {
	Tags []string
}

// FilePolicy is the effective policy for one file: base configuration
// merged with that file's #+TODO:/#+STARTUP:/#+PRIORITIES:/#+ARCHIVE:/
// #+TAGS: lines.
type FilePolicy struct {
	ActiveKeywords []orgtime.Keyword
	DoneKeywords   []orgtime.Keyword

	Logging config.LoggingConfig

	PriorityHighest byte
	PriorityLowest  byte
	PriorityDefault byte

	ArchiveDirective string // raw #+ARCHIVE: value, "" if undeclared

	TagGroups    []TagGroup
	TagFastKeys  map[string]byte

	InheritTags                bool
	InheritProperties          bool
	PropertyAllowList          []string
	TagsExcludeFromInheritance []string

	DeadlineWarningDays int
}

// LoggingPolicy is the fully resolved per-headline logging policy, after
// applying the ancestor LOGGING property.
type LoggingPolicy struct {
	Suppressed bool
	Done       string
	Repeat     string
	Reschedule string
	Redeadline string
	Refile     string
}

var startupWords = map[string]struct {
	category string
	action   string
}{
	"logdone":           {"done", config.LogActionTime},
	"lognotedone":       {"done", config.LogActionNote},
	"nologdone":         {"done", config.LogActionNone},
	"logrepeat":         {"repeat", config.LogActionTime},
	"lognoterepeat":     {"repeat", config.LogActionNote},
	"nologrepeat":       {"repeat", config.LogActionNone},
	"logreschedule":     {"reschedule", config.LogActionTime},
	"lognotereschedule": {"reschedule", config.LogActionNote},
	"nologreschedule":   {"reschedule", config.LogActionNone},
	"logredeadline":     {"redeadline", config.LogActionTime},
	"lognoteredeadline": {"redeadline", config.LogActionNote},
	"nologredeadline":   {"redeadline", config.LogActionNone},
	"logrefile":         {"refile", config.LogActionTime},
	"lognoterefile":     {"refile", config.LogActionNote},
	"nologrefile":       {"refile", config.LogActionNone},
}

func applyStartupWord(l *config.LoggingConfig, word string) {
	eff, ok := startupWords[word]
	if !ok {
		return
	}
	switch eff.category {
	case "done":
		l.Done = eff.action
	case "repeat":
		l.Repeat = eff.action
	case "reschedule":
		l.Reschedule = eff.action
	case "redeadline":
		l.Redeadline = eff.action
	case "refile":
		l.Refile = eff.action
	}
}

// ParseTagsLine parses a "#+TAGS:" value into mutual-exclusion groups
// ("{a : b : c}") and fast-select keys ("laptop(l)"). Tags outside a {…}
// group are registered for their fast key only; they do not form a group.
func ParseTagsLine(value string) (groups []TagGroup, fastKeys map[string]byte) {
	fastKeys = map[string]byte{}
	i := 0
	for i < len(value) {
		for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
			i++
		}
		if i >= len(value) {
			break
		}
		if value[i] == '{' {
			end := strings.IndexByte(value[i:], '}')
			if end < 0 {
				break
			}
			inner := value[i+1 : i+end]
			i += end + 1
			var group TagGroup
			for _, part := range strings.Split(inner, ":") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				name, key, hasKey := stripFastKey(part)
				group.Tags = append(group.Tags, name)
				if hasKey {
					fastKeys[name] = key
				}
			}
			if len(group.Tags) > 0 {
				groups = append(groups, group)
			}
			continue
		}
		j := i
		for j < len(value) && value[j] != ' ' && value[j] != '\t' {
			j++
		}
		token := value[i:j]
		name, key, hasKey := stripFastKey(token)
		if hasKey && name != "" {
			fastKeys[name] = key
		}
		i = j
	}
	return groups, fastKeys
}

func stripFastKey(token string) (name string, key byte, hasKey bool) {
	if len(token) >= 4 && token[len(token)-1] == ')' {
		idx := strings.LastIndexByte(token, '(')
		if idx == len(token)-3 {
			return token[:idx], token[idx+1], true
		}
	}
	return token, 0, false
}

// MutexGroupFor returns the tag group containing tag, if any.
func MutexGroupFor(groups []TagGroup, tag string) (TagGroup, bool) {
	for _, g := range groups {
		for _, t := range g.Tags {
			if t == tag {
				return g, true
			}
		}
	}
	return TagGroup{}, false
}
