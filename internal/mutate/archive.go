package mutate

import (
	"strings"
	"time"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

// Archive implements SPEC_FULL.md §4.E.9: extracts the subtree at pos,
// removes it from sourceContent, normalizes it to level 1, stamps its
// property drawer with ARCHIVE_* properties, and appends it to
// archiveContent (the current contents of the "_archive" sibling file,
// possibly empty). Returns the new source and archive file contents.
func Archive(sourceContent string, pos int, archiveContent string, sourcePath string, doc *orgdoc.Document, h *orgdoc.Headline, now time.Time) (newSource, newArchive string, err error) {
	end, err := section.SubtreeEnd(sourceContent, pos)
	if err != nil {
		return "", "", err
	}
	subtree := sourceContent[pos:end]
	newSource = sourceContent[:pos] + sourceContent[end:]

	delta := 1 - subtreeLevel(subtree)
	subtree = adjustLevels(subtree, delta)

	olpath := archiveOlpath(doc, h)

	seg, err := section.Split(subtree, 0)
	if err != nil {
		return "", "", err
	}
	props := section.PropertyLines(seg.PropertyDrawer)
	props = setOrAppend(props, "ARCHIVE_TIME", orgtime.Format(timestampAt(now)))
	props = setOrAppend(props, "ARCHIVE_FILE", sourcePath)
	props = setOrAppend(props, "ARCHIVE_OLPATH", olpath)
	props = setOrAppend(props, "ARCHIVE_CATEGORY", "file")
	if h.Todo != "" {
		props = setOrAppend(props, "ARCHIVE_TODO", h.Todo)
	}

	newDrawer := section.FormatPropertyDrawer(props)
	if seg.HasProperties {
		subtree = section.Splice(subtree, seg.PropertyStart, seg.PropertyEnd, newDrawer)
	} else {
		insertPos := seg.PropertiesInsertPos()
		subtree = section.Splice(subtree, insertPos, insertPos, newDrawer)
	}

	newArchive = insertSubtree(archiveContent, len(archiveContent), subtree)
	return newSource, newArchive, nil
}

func setOrAppend(props []orgtime.Property, key, value string) []orgtime.Property {
	for i := range props {
		if props[i].Key == key {
			props[i].Value = value
			return props
		}
	}
	return append(props, orgtime.Property{Key: key, Value: value})
}

// archiveOlpath joins h's ancestor titles (root first, not including h
// itself) with "/", per SPEC_FULL.md §4.E.9's ARCHIVE_OLPATH.
func archiveOlpath(doc *orgdoc.Document, h *orgdoc.Headline) string {
	anc := orgconf.Ancestors(doc, h)
	if len(anc) == 0 {
		return ""
	}
	titles := make([]string, len(anc))
	for i, a := range anc {
		titles[len(anc)-1-i] = a.Title
	}
	return strings.Join(titles, "/")
}
