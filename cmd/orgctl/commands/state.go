package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var stateCmd = &cobra.Command{
	Use:   "state FILE TARGET",
	Short: "Set a headline's TODO state, advancing a repeater if present",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, target := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")

		contents, fp, doc, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}

		updated, err := mutate.SetTodoState(contents, h.Pos, fp, doc, h, target, nowUTC())
		if err != nil {
			return err
		}
		if updated == contents {
			fmt.Fprintln(cmd.OutOrStdout(), "no change")
			return nil
		}
		return writeBack(path, updated)
	},
}

func init() {
	addHeadingFlag(stateCmd)
	rootCmd.AddCommand(stateCmd)
}
