package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var idCmd = &cobra.Command{
	Use:   "id FILE",
	Short: "Print a headline's :ID: property, creating one if absent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}

		updated, id, err := mutate.GetOrCreateID(contents, h.Pos)
		if err != nil {
			return err
		}
		if updated != contents {
			if err := writeBack(path, updated); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	addHeadingFlag(idCmd)
	rootCmd.AddCommand(idCmd)
}
