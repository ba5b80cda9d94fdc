package query

import (
	"strconv"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// Virtual property names, per SPEC_FULL.md §4.F.
const (
	VProp    = "ITEM"
	VTodo    = "TODO"
	VPrio    = "PRIORITY"
	VLevel   = "LEVEL"
	VTags    = "TAGS"
	VAllTags = "ALLTAGS"
	VCat     = "CATEGORY"
	VFile    = "FILE"
	VSched   = "SCHEDULED"
	VDead    = "DEADLINE"
	VClosed  = "CLOSED"
)

// VirtualProperty resolves a property name against h, falling back to
// ancestor-inherited real properties (via orgconf.InheritedProperty) when
// name is not one of the built-in virtual names.
func VirtualProperty(fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, file string, name string) (string, bool) {
	switch name {
	case VProp:
		return h.Title, true
	case VTodo:
		return h.Todo, h.Todo != ""
	case VPrio:
		if h.HasPriority {
			return string(h.Priority), true
		}
		return "", false
	case VLevel:
		return strconv.Itoa(h.Level), true
	case VTags:
		if len(h.Tags) == 0 {
			return "", false
		}
		return orgtime.FormatTagList(h.Tags), true
	case VAllTags:
		all := orgconf.AllTags(fp, doc, h)
		if len(all) == 0 {
			return "", false
		}
		return orgtime.FormatTagList(all), true
	case VCat:
		cat := orgconf.Category(fp, doc, h)
		if cat == "" {
			return "", false
		}
		return cat, true
	case VFile:
		return file, true
	case VSched:
		if h.Planning != nil && h.Planning.Scheduled != nil {
			return orgtime.Format(h.Planning.Scheduled), true
		}
		return "", false
	case VDead:
		if h.Planning != nil && h.Planning.Deadline != nil {
			return orgtime.Format(h.Planning.Deadline), true
		}
		return "", false
	case VClosed:
		if h.Planning != nil && h.Planning.Closed != nil {
			return orgtime.Format(h.Planning.Closed), true
		}
		return "", false
	default:
		return orgconf.InheritedProperty(fp, doc, h, name)
	}
}
