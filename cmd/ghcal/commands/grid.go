package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/pkg/stats"
)

// One glyph per intensity level, lowest first.
var levelGlyphs = []string{"·", "░", "▒", "▓", "█"}

var weekdayLabels = []string{"Sun", "", "Tue", "", "Thu", "", "Sat"}

// NewGridCommand creates the grid subcommand.
func NewGridCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grid <username>",
		Short: "Print the contribution calendar as a heat map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			renderGrid(cmd.OutOrStdout(), state.Result)
			return nil
		},
	}
}

// renderGrid prints weekdays as rows and weeks as columns, oldest on the left.
func renderGrid(w io.Writer, r calendar.Result) {
	fmt.Fprintf(w, "%s contributions in the last year for %s\n\n", humanize.Comma(int64(r.Total)), r.User)

	for day := 0; day < calendar.DaysPerWeek; day++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%-4s", weekdayLabels[day])
		for _, week := range r.Weeks {
			if day >= len(week.Days) {
				b.WriteString(" ")
				continue
			}
			b.WriteString(levelGlyphs[stats.Level(week.Days[day].Count)])
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintf(w, "\n    Less %s More\n", strings.Join(levelGlyphs, ""))
}
