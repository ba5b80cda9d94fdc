package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jra3/orgctl/internal/index"
	"github.com/jra3/orgctl/internal/orgconf"
)

var (
	queryTodo          string
	queryTag           string
	queryOutlinePrefix string
	queryFile          string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the persistent headline index",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := index.OpenWithCache(index.DefaultDBPath(), cfg.Cache)
		if err != nil {
			return fmt.Errorf("orgctl: open index: %w", err)
		}
		defer idx.Close()

		rows, err := idx.QueryHeadlines(context.Background(), index.HeadlineQuery{
			Todo:          queryTodo,
			Tag:           queryTag,
			OutlinePrefix: internalOutlinePath(queryOutlinePrefix),
			File:          queryFile,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range rows {
			fmt.Fprintf(out, "%s:%d\t%s\t%s\n", r.File, r.CharPos, r.Todo.String, r.Title)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Full-text search the headline index (SQLite FTS5 syntax)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := index.OpenWithCache(index.DefaultDBPath(), cfg.Cache)
		if err != nil {
			return fmt.Errorf("orgctl: open index: %w", err)
		}
		defer idx.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		matches, err := idx.SearchFTS(context.Background(), args[0], limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range matches {
			fmt.Fprintf(out, "%s:%d\t%s\n", m.File, m.CharPos, m.Title)
		}
		return nil
	},
}

var agendaCmd = &cobra.Command{
	Use:   "agenda [START] [END]",
	Short: "List scheduled/deadline headlines in a date range (default: today)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := nowUTC()
		end := start.AddDate(0, 0, 1)
		if len(args) >= 1 {
			t, err := time.Parse("2006-01-02", args[0])
			if err != nil {
				return fmt.Errorf("orgctl: invalid START date %q: %w", args[0], err)
			}
			start = t
			end = start.AddDate(0, 0, 1)
		}
		if len(args) == 2 {
			t, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				return fmt.Errorf("orgctl: invalid END date %q: %w", args[1], err)
			}
			end = t.AddDate(0, 0, 1)
		}

		idx, err := index.OpenWithCache(index.DefaultDBPath(), cfg.Cache)
		if err != nil {
			return fmt.Errorf("orgctl: open index: %w", err)
		}
		defer idx.Close()

		startDt := start.Format("2006-01-02")
		endDt := end.AddDate(0, 0, -1).Format("2006-01-02")
		rows, err := idx.QueryAgenda(context.Background(), startDt, endDt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range rows {
			fmt.Fprintf(out, "%s:%d\t%s\t%s\t%s\n", r.File, r.CharPos, r.Field, r.Dt, r.Title)
		}
		return nil
	},
}

// internalOutlinePath converts a CLI "/"-separated outline path into the
// 0x1F-separated form stored in the index, the inverse of humanOutlinePath.
func internalOutlinePath(human string) string {
	if human == "" {
		return ""
	}
	out := make([]byte, 0, len(human))
	for i := 0; i < len(human); i++ {
		if human[i] == '/' {
			out = append(out, orgconf.OutlinePathSeparator[0])
		} else {
			out = append(out, human[i])
		}
	}
	return string(out)
}

func init() {
	queryCmd.Flags().StringVar(&queryTodo, "todo", "", "filter by exact TODO keyword")
	queryCmd.Flags().StringVar(&queryTag, "tag", "", "filter by tag (direct or inherited)")
	queryCmd.Flags().StringVar(&queryOutlinePrefix, "outline-prefix", "", "filter by outline-path prefix, \"/\"-separated")
	queryCmd.Flags().StringVar(&queryFile, "file", "", "filter by exact file path")
	searchCmd.Flags().Int("limit", 100, "maximum number of matches")
	rootCmd.AddCommand(queryCmd, searchCmd, agendaCmd)
}
