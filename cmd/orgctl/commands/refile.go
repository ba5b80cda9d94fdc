package commands

import (
	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var (
	refileTargetFile    string
	refileTargetHeading string
	refileLog           bool
)

var refileCmd = &cobra.Command{
	Use:   "refile FILE",
	Short: "Move a headline subtree under another headline (or to top level)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourcePath := args[0]
		heading, _ := cmd.Flags().GetString("heading")
		sourceContents, _, sourceDoc, sourceH, err := loadForEdit(sourcePath, heading)
		if err != nil {
			return err
		}

		targetPath := refileTargetFile
		if targetPath == "" {
			targetPath = sourcePath
		}

		hasTarget := refileTargetHeading != ""

		if targetPath == sourcePath {
			targetPos := 0
			if hasTarget {
				targetH, err := resolveHeadline(sourceDoc, refileTargetHeading)
				if err != nil {
					return err
				}
				targetPos = targetH.Pos
			}
			updated, err := mutate.RefileWithinFile(sourceContents, sourceH.Pos, targetPos, hasTarget, refileLog, nowUTC())
			if err != nil {
				return err
			}
			return writeBack(sourcePath, updated)
		}

		targetContents, targetDoc, err := loadDoc(targetPath)
		if err != nil {
			return err
		}
		targetPos := 0
		if hasTarget {
			targetH, err := resolveHeadline(targetDoc, refileTargetHeading)
			if err != nil {
				return err
			}
			targetPos = targetH.Pos
		}

		newSource, newTarget, err := mutate.RefileAcrossFiles(sourceContents, sourceH.Pos, targetContents, targetPos, hasTarget, refileLog, nowUTC())
		if err != nil {
			return err
		}
		if err := writeBack(sourcePath, newSource); err != nil {
			return err
		}
		return writeBack(targetPath, newTarget)
	},
}

func init() {
	addHeadingFlag(refileCmd)
	refileCmd.Flags().StringVar(&refileTargetFile, "to-file", "", "target file (default: same file)")
	refileCmd.Flags().StringVar(&refileTargetHeading, "to-heading", "", "target heading (default: top level)")
	refileCmd.Flags().BoolVar(&refileLog, "log", false, "append a \"Refiled on\" logbook note")
	rootCmd.AddCommand(refileCmd)
}
