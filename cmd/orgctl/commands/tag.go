package commands

import (
	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var tagAddCmd = &cobra.Command{
	Use:   "tag-add FILE TAG",
	Short: "Add a tag to a headline, honoring #+TAGS: mutual-exclusion groups",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, tag := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")
		contents, fp, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.AddTag(contents, h.Pos, fp, tag)
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "tag-remove FILE TAG",
	Short: "Remove a tag from a headline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, tag := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")
		contents, fp, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.RemoveTag(contents, h.Pos, fp, tag)
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

func init() {
	addHeadingFlag(tagAddCmd)
	addHeadingFlag(tagRemoveCmd)
	rootCmd.AddCommand(tagAddCmd, tagRemoveCmd)
}
