package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/index"
	"github.com/jra3/orgctl/internal/orgtime"
	"github.com/jra3/orgctl/internal/section"
)

var statsCmd = &cobra.Command{
	Use:   "stats [DIR]",
	Short: "Summarize TODO counts and clocked time across an org directory tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		files, err := index.WalkOrgFiles(root)
		if err != nil {
			return err
		}

		color := isatty.IsTerminal(os.Stdout.Fd())
		todoCounts := map[string]int{}
		var totalMinutes int
		var recentlyClosed int

		for _, path := range files {
			contents, doc, err := loadDoc(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "orgctl: skipping %s: %v\n", path, err)
				continue
			}
			for _, h := range doc.Headlines {
				if h.Todo != "" {
					todoCounts[h.Todo]++
				}
				totalMinutes += clockedMinutes(contents, h.Pos)
				if h.Planning != nil && h.Planning.Closed != nil {
					recentlyClosed++
				}
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "files: %d\n", len(files))
		for todo, n := range todoCounts {
			line := fmt.Sprintf("  %-12s %d", todo, n)
			if color && todo == "DONE" {
				line = "\x1b[32m" + line + "\x1b[0m"
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "clocked time: %s\n", humanize.FtoaWithDigits(float64(totalMinutes)/60, 1)+"h")
		fmt.Fprintf(out, "closed headlines: %d\n", recentlyClosed)
		return nil
	},
}

// clockedMinutes sums the completed (closed) CLOCK entries in the
// headline's own logbook drawer, skipping the still-open one if present.
func clockedMinutes(content string, pos int) int {
	seg, err := section.Split(content, pos)
	if err != nil || !seg.HasLogbook {
		return 0
	}
	total := 0
	for _, line := range section.LogbookEntryLines(seg.LogbookDrawer) {
		ce, ok := orgtime.ParseClockLine(line)
		if !ok || ce.End == nil {
			continue
		}
		h, m, neg := parseHM(ce.Duration)
		if neg {
			continue
		}
		total += h*60 + m
	}
	return total
}

func parseHM(s string) (h, m int, negative bool) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, 0, false
	}
	if hh < 0 {
		return hh, mm, true
	}
	return hh, mm, false
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
