package commands

import (
	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
)

var clockInCmd = &cobra.Command{
	Use:   "clock-in FILE",
	Short: "Start a clock entry on a headline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.ClockIn(contents, h.Pos, nowUTC())
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

var clockOutCmd = &cobra.Command{
	Use:   "clock-out FILE",
	Short: "Close the open clock entry on a headline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.ClockOut(contents, h.Pos, nowUTC())
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

var noteCmd = &cobra.Command{
	Use:   "note FILE TEXT",
	Short: "Append a timestamped note to a headline's logbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, text := args[0], args[1]
		heading, _ := cmd.Flags().GetString("heading")
		contents, _, _, h, err := loadForEdit(path, heading)
		if err != nil {
			return err
		}
		updated, err := mutate.AddNote(contents, h.Pos, text, nowUTC())
		if err != nil {
			return err
		}
		return writeBack(path, updated)
	},
}

func init() {
	addHeadingFlag(clockInCmd)
	addHeadingFlag(clockOutCmd)
	addHeadingFlag(noteCmd)
	rootCmd.AddCommand(clockInCmd, clockOutCmd, noteCmd)
}
