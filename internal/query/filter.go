package query

import (
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
)

// Predicate tests one headline against a document's resolved policy.
type Predicate func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool

// Filter keeps the headlines for which every predicate returns true.
func Filter(headlines []*orgdoc.Headline, fp *orgconf.FilePolicy, doc *orgdoc.Document, preds ...Predicate) []*orgdoc.Headline {
	var out []*orgdoc.Headline
	for _, h := range headlines {
		match := true
		for _, p := range preds {
			if !p(fp, doc, h) {
				match = false
				break
			}
		}
		if match {
			out = append(out, h)
		}
	}
	return out
}

// ByTodo matches an exact TODO keyword. An empty todo matches headlines
// with no keyword at all.
func ByTodo(todo string) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		return h.Todo == todo
	}
}

// ByDoneState matches headlines whose keyword is in fp's done set (or, if
// want is false, headlines whose keyword is active or absent).
func ByDoneState(want bool) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		done := isDoneState(fp, h.Todo)
		return done == want
	}
}

func isDoneState(fp *orgconf.FilePolicy, todo string) bool {
	if todo == "" {
		return false
	}
	for _, k := range fp.DoneKeywords {
		if k.Name == todo {
			return true
		}
	}
	return false
}

// ByTag matches headlines carrying tag, either directly or (if inherited
// is true) via ancestor/file-tag inheritance.
func ByTag(tag string, inherited bool) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		var tags []string
		if inherited {
			tags = orgconf.AllTags(fp, doc, h)
		} else {
			tags = h.Tags
		}
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}
}

// ByLevel matches an exact outline depth.
func ByLevel(level int) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		return h.Level == level
	}
}

// ByMinLevel matches headlines at or below level (numerically >=).
func ByMinLevel(level int) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		return h.Level >= level
	}
}

// ByProperty matches headlines whose (possibly inherited) property value
// for key equals value.
func ByProperty(key, value string) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		v, ok := orgconf.InheritedProperty(fp, doc, h, key)
		return ok && v == value
	}
}

// HasProperty matches headlines that have any (possibly inherited) value
// for key.
func HasProperty(key string) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		_, ok := orgconf.InheritedProperty(fp, doc, h, key)
		return ok
	}
}

// ByPriority matches an exact priority letter; headlines without a
// priority cookie never match.
func ByPriority(letter byte) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		return h.HasPriority && h.Priority == letter
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		return !p(fp, doc, h)
	}
}

// Any matches when at least one of preds matches (logical OR, as opposed
// to Filter's implicit AND).
func Any(preds ...Predicate) Predicate {
	return func(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline) bool {
		for _, p := range preds {
			if p(fp, doc, h) {
				return true
			}
		}
		return false
	}
}
