package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var priorityCmd = &cobra.Command{
	Use:   "priority FILE LETTER",
	Short: "Set a headline's priority cookie, or clear it with LETTER=-",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, letter := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")
		contents, fp, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}

		var updated string
		if letter == "-" {
			updated, err = mutate.ClearPriority(contents, h.Pos, fp)
		} else {
			if len(letter) != 1 {
				return fmt.Errorf("orgctl: priority letter must be a single character")
			}
			updated, err = mutate.SetPriority(contents, h.Pos, fp, letter[0])
		}
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

func init() {
	addHeadingFlag(priorityCmd)
	rootCmd.AddCommand(priorityCmd)
}
