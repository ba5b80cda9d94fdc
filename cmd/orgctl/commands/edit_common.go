package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
)

// loadForEdit reads path, parses it, resolves its FilePolicy, and locates
// the target headline by heading (an outline path or bare title).
func loadForEdit(path, heading string) (contents string, fp *orgconf.FilePolicy, doc *orgdoc.Document, h *orgdoc.Headline, err error) {
	contents, doc, err = loadDoc(path)
	if err != nil {
		return "", nil, nil, nil, err
	}
	fp = orgconf.ResolveFile(cfg, doc)
	h, err = resolveHeadline(doc, heading)
	if err != nil {
		return "", nil, nil, nil, err
	}
	return contents, fp, doc, h, nil
}

func addHeadingFlag(cmd *cobra.Command) *string {
	var heading string
	cmd.Flags().StringVar(&heading, "heading", "", "outline path or title of the target headline")
	cmd.MarkFlagRequired("heading")
	return &heading
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func printErr(cmd *cobra.Command, err error) error {
	return fmt.Errorf("orgctl: %w", err)
}
