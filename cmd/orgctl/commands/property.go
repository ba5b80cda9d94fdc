package commands

import (
	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var propertySetCmd = &cobra.Command{
	Use:   "property-set FILE KEY VALUE",
	Short: "Set a property in a headline's :PROPERTIES: drawer",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, key, value := args[0], args[1], args[2]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.SetProperty(contents, h.Pos, key, value)
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

var propertyRemoveCmd = &cobra.Command{
	Use:   "property-remove FILE KEY",
	Short: "Remove a property from a headline's :PROPERTIES: drawer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, key := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.RemoveProperty(contents, h.Pos, key)
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

func init() {
	addHeadingFlag(propertySetCmd)
	addHeadingFlag(propertyRemoveCmd)
	rootCmd.AddCommand(propertySetCmd, propertyRemoveCmd)
}
