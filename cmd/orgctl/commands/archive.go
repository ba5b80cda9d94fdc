package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var archiveCmd = &cobra.Command{
	Use:   "archive FILE",
	Short: "Move a headline subtree to its _archive sibling file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, doc, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}

		archivePath := archiveSiblingPath(path)
		archiveContents := ""
		if raw, err := os.ReadFile(archivePath); err == nil {
			archiveContents = string(raw)
		} else if !os.IsNotExist(err) {
			return err
		}

		newSource, newArchive, err := mutate.Archive(contents, h.Pos, archiveContents, path, doc, h, nowUTC())
		if err != nil {
			return err
		}
		if err := writeBack(path, newSource); err != nil {
			return err
		}
		return writeBack(archivePath, newArchive)
	},
}

// archiveSiblingPath appends cfg.Archive.LocationPattern to path's
// extensionless form, per spec.md §4.E.9.
func archiveSiblingPath(path string) string {
	ext := ""
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		ext = path[i:]
		path = path[:i]
	}
	return path + cfg.Archive.LocationPattern + ext
}

func init() {
	addHeadingFlag(archiveCmd)
	rootCmd.AddCommand(archiveCmd)
}
