// Package commands implements the ghcal subcommands.
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/application/services"
	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/githubapi"
	"github.com/konstantinWDK/github-light-calendar/pkg/client"
)

const (
	proxyFlag    = "proxy"
	timeoutFlag  = "timeout"
	timezoneFlag = "timezone"
)

// AddSourceFlags registers the flags selecting where calendars come from.
func AddSourceFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(proxyFlag, os.Getenv("GHCAL_PROXY"), "calendar proxy URL (default: query GitHub directly)")
	cmd.PersistentFlags().Duration(timeoutFlag, 10*time.Second, "timeout for each GitHub API call in direct mode")
	cmd.PersistentFlags().String(timezoneFlag, envOr("CALENDAR_TIMEZONE", "UTC"), "time zone the calendar dates are laid out in")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func locationFor(cmd *cobra.Command) (*time.Location, error) {
	name, err := cmd.Flags().GetString(timezoneFlag)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", timezoneFlag, name, err)
	}
	return loc, nil
}

// directFetcher builds calendars in-process, the way the proxy does on a cache miss.
type directFetcher struct {
	aggregator *services.Aggregator
}

func (f directFetcher) Fetch(ctx context.Context, username string) (calendar.Result, error) {
	acq, err := f.aggregator.Aggregate(ctx, username)
	if err != nil {
		return calendar.Result{}, err
	}
	if !acq.Source.Authoritative() {
		fmt.Fprintln(os.Stderr, "warning: GitHub is rate limiting, showing sample data")
	}
	return acq.Result(), nil
}

func fetcherFor(cmd *cobra.Command, loc *time.Location) (client.Fetcher, error) {
	proxy, err := cmd.Flags().GetString(proxyFlag)
	if err != nil {
		return nil, err
	}
	if proxy != "" {
		return client.New(proxy)
	}

	timeout, err := cmd.Flags().GetDuration(timeoutFlag)
	if err != nil {
		return nil, err
	}
	gh, err := githubapi.NewClient(githubapi.Options{
		BaseURL: os.Getenv("GITHUB_API_URL"),
		Token:   os.Getenv("GITHUB_TOKEN"),
		Timeout: timeout,
	}, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return directFetcher{aggregator: services.NewDefaultAggregator(gh, zap.NewNop(), services.WithLocation(loc))}, nil
}

// load runs one widget load and turns a failed state into an error.
func load(cmd *cobra.Command, username string) (client.State, error) {
	loc, err := locationFor(cmd)
	if err != nil {
		return client.State{}, err
	}
	fetcher, err := fetcherFor(cmd, loc)
	if err != nil {
		return client.State{}, err
	}

	state := client.NewCalendar(fetcher, username, client.WithLocation(loc)).Load(cmd.Context())
	if state.Phase == client.PhaseFailed {
		return state, fmt.Errorf("could not load calendar for %s: %w", username, state.Err)
	}
	return state, nil
}
