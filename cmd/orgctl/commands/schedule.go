package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/mutate"
	"github.com/jra3/orgctl/internal/orgtime"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule FILE TIMESTAMP",
	Short: "Set a headline's SCHEDULED timestamp",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanningSet(cmd, args, "scheduled")
	},
}

var deadlineCmd = &cobra.Command{
	Use:   "deadline FILE TIMESTAMP",
	Short: "Set a headline's DEADLINE timestamp",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanningSet(cmd, args, "deadline")
	},
}

func runPlanningSet(cmd *cobra.Command, args []string, which string) error {
	path, tsText := args[0], args[1]
	heading, _ := cmd.Flags().GetString("heading")

	contents, fp, doc, h, err := loadForEdit(path, heading)
	if err != nil {
		return err
	}

	ts, n, perr := orgtime.ParseTimestamp(tsText)
	if perr != nil || n != len(tsText) {
		return fmt.Errorf("orgctl: %q is not a valid timestamp", tsText)
	}

	var updated string
	switch which {
	case "scheduled":
		updated, err = mutate.SetScheduled(contents, h.Pos, fp, doc, h, ts, nowUTC())
	case "deadline":
		updated, err = mutate.SetDeadline(contents, h.Pos, fp, doc, h, ts, nowUTC())
	}
	if err != nil {
		return err
	}
	return writeBack(path, updated)
}

func init() {
	addHeadingFlag(scheduleCmd)
	addHeadingFlag(deadlineCmd)
	rootCmd.AddCommand(scheduleCmd, deadlineCmd)
}
