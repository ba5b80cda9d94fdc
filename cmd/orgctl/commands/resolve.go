package commands

import (
	"fmt"
	"os"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

// loadDoc reads and parses path using the effective TODO-keyword defaults.
func loadDoc(path string) (contents string, doc *orgdoc.Document, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	active, done := orgtime.ParseKeywordSequence(cfg.Todo.Sequence)
	doc, err = orgdoc.Parse(string(raw), orgdoc.ParseOptions{DefaultActive: active, DefaultDone: done})
	if err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return string(raw), doc, nil
}

// resolveHeadline finds the headline named by heading in doc and returns it.
// An exact-title match anywhere in the file is tried first; failing that,
// heading is compared with each headline's outline path (ancestor and own
// titles joined by "/").
func resolveHeadline(doc *orgdoc.Document, heading string) (*orgdoc.Headline, error) {
	for _, h := range doc.Headlines {
		if h.Title == heading {
			return h, nil
		}
	}
	for _, h := range doc.Headlines {
		path := orgconf.OutlinePath(doc, h)
		if humanOutlinePath(path) == heading {
			return h, nil
		}
	}
	return nil, fmt.Errorf("heading %q not found", heading)
}

func humanOutlinePath(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == orgconf.OutlinePathSeparator[0] {
			out = append(out, '/')
		} else {
			out = append(out, raw[i])
		}
	}
	return string(out)
}

func writeBack(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}
