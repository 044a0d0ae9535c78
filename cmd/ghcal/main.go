// Package main provides the ghcal command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/konstantinWDK/github-light-calendar/cmd/ghcal/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ghcal",
		Short: "GitHub contributions calendar in the terminal",
		Long: `ghcal fetches a user's contribution calendar and prints it.

Calendars come from a running proxy when --proxy is set, otherwise they
are built directly against the GitHub API using GITHUB_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	commands.AddSourceFlags(rootCmd)
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewGridCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
