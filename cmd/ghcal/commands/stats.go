package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/konstantinWDK/github-light-calendar/pkg/stats"
)

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <username>",
		Short: "Print contribution statistics for the last year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), state.Result.User, state.Stats)
			return nil
		},
	}
}

func renderStats(w io.Writer, user string, s stats.Stats) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(user)

	mostActive := s.MostActiveDay
	if s.MostActiveCount > 0 {
		mostActive = fmt.Sprintf("%s (%s)", s.MostActiveDay, humanize.Comma(int64(s.MostActiveCount)))
	}

	tbl.AppendRows([]table.Row{
		{"Total contributions", humanize.Comma(int64(s.Total))},
		{"Current streak", days(s.CurrentStreak)},
		{"Longest streak", days(s.LongestStreak)},
		{"Average per day", fmt.Sprintf("%.1f", s.AveragePerDay)},
		{"Most active day", mostActive},
	})
	tbl.Render()
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}
