package query

import (
	"path/filepath"
	"strings"

	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// externalSchemes are link types that never resolve within the local org
// tree.
var externalSchemes = map[string]bool{
	"http": true, "https": true, "mailto": true, "ftp": true,
	"news": true, "shell": true, "elisp": true, "irc": true,
	"doi": true, "attachment": true,
}

// Resolution is the outcome of resolving one orgtime.Link.
type Resolution struct {
	Kind              string // mirrors Link.Type
	External          bool
	Found             bool
	TargetFile        string
	TargetHeadlinePos int
}

// IDIndex maps an ID property value to the file and headline position
// where it is defined, built by the caller (typically from internal/index).
type IDIndex map[string]IDLocation

// IDLocation is one entry of an IDIndex.
type IDLocation struct {
	File        string
	HeadlinePos int
}

// ResolveLink resolves l, which occurred in sourceFile. docsByFile must
// contain at least sourceFile's own document; ids resolves "id:" links.
// The "#+LINK:" abbreviations registered in the source document are
// expanded against l.Path first, and the link's type is then re-derived
// from the expanded text.
func ResolveLink(l orgtime.Link, sourceFile string, docsByFile map[string]*orgdoc.Document, ids IDIndex) Resolution {
	l = applyAbbrev(l, docsByFile[sourceFile])

	if externalSchemes[l.Type] {
		return Resolution{Kind: l.Type, External: true}
	}

	switch l.Type {
	case "id":
		loc, ok := ids[l.Path]
		if !ok {
			return Resolution{Kind: "id", Found: false}
		}
		return Resolution{Kind: "id", Found: true, TargetFile: loc.File, TargetHeadlinePos: loc.HeadlinePos}
	case "file":
		target := resolveRelativePath(sourceFile, stripFileSearchOption(l.Path))
		doc, ok := docsByFile[target]
		if !ok {
			return Resolution{Kind: "file", TargetFile: target, Found: false}
		}
		if l.HasSearch {
			return resolveSearchOption(target, doc, l.SearchOption)
		}
		return Resolution{Kind: "file", TargetFile: target, Found: true}
	case "fuzzy":
		doc := docsByFile[sourceFile]
		return resolveFuzzy(sourceFile, doc, l.Path)
	case "custom-id":
		doc := docsByFile[sourceFile]
		return resolveCustomID(sourceFile, doc, l.Path)
	default:
		return Resolution{Kind: l.Type, External: true}
	}
}

func applyAbbrev(l orgtime.Link, doc *orgdoc.Document) orgtime.Link {
	if doc == nil {
		return l
	}
	for _, ab := range doc.LinkAbbrevs {
		if ab.Abbrev == l.Type {
			expanded := orgtime.ExpandAbbrev(ab.Template, l.Path)
			reclassified, _, ok := orgtime.ParseLink("[[" + expanded + "]]")
			if ok {
				reclassified.Description = l.Description
				reclassified.HasDesc = l.HasDesc
				return reclassified
			}
		}
	}
	return l
}

// resolveRelativePath resolves a "file:" link path against the directory
// containing sourceFile, the way org itself resolves relative file links.
func resolveRelativePath(sourceFile, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(sourceFile), path))
}

func stripFileSearchOption(path string) string {
	if idx := strings.Index(path, "::"); idx >= 0 {
		return path[:idx]
	}
	return path
}

// resolveSearchOption handles the "file:foo.org::*Heading" and
// "file:foo.org::#custom-id" forms; a bare "::123" line-number search
// option resolves to the file itself with no headline attribution.
func resolveSearchOption(file string, doc *orgdoc.Document, opt string) Resolution {
	switch {
	case strings.HasPrefix(opt, "*"):
		return resolveFuzzy(file, doc, opt[1:])
	case strings.HasPrefix(opt, "#"):
		return resolveCustomID(file, doc, opt[1:])
	default:
		return Resolution{Kind: "file", TargetFile: file, Found: true}
	}
}

// resolveFuzzy finds a headline whose title matches target exactly, per
// org's plain-heading-search link convention.
func resolveFuzzy(file string, doc *orgdoc.Document, target string) Resolution {
	if doc == nil {
		return Resolution{Kind: "fuzzy", TargetFile: file, Found: false}
	}
	for _, h := range doc.Headlines {
		if h.Title == target {
			return Resolution{Kind: "fuzzy", TargetFile: file, TargetHeadlinePos: h.Pos, Found: true}
		}
	}
	return Resolution{Kind: "fuzzy", TargetFile: file, Found: false}
}

func resolveCustomID(file string, doc *orgdoc.Document, id string) Resolution {
	if doc == nil {
		return Resolution{Kind: "custom-id", TargetFile: file, Found: false}
	}
	for _, h := range doc.Headlines {
		for _, p := range h.Properties {
			if p.Key == "CUSTOM_ID" && p.Value == id {
				return Resolution{Kind: "custom-id", TargetFile: file, TargetHeadlinePos: h.Pos, Found: true}
			}
		}
	}
	return Resolution{Kind: "custom-id", TargetFile: file, Found: false}
}
