// Package stats derives summary statistics from a calendar result. Every
// function is pure; the result alone determines the output.
package stats

import (
	"math"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

// NoContributions is reported as the most active day when every count is zero.
const NoContributions = "No contributions yet"

// Stats summarizes a calendar.
type Stats struct {
	Total           int     `json:"total"`
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	AveragePerDay   float64 `json:"average_per_day"`
	MostActiveDay   string  `json:"most_active_day"`
	MostActiveCount int     `json:"most_active_count"`
}

type options struct {
	asOf string
}

// Option customizes Derive.
type Option func(*options)

// AsOf ends the current-streak scan at date (YYYY-MM-DD), skipping the
// future days that pad the last week of the grid.
func AsOf(date string) Option {
	return func(o *options) { o.asOf = date }
}

// Derive computes the summary statistics for r.
func Derive(r calendar.Result, opts ...Option) Stats {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	days := r.Days()
	s := Stats{
		Total:         r.Total,
		AveragePerDay: math.Round(float64(r.Total)/float64(calendar.WindowDays)*10) / 10,
		MostActiveDay: NoContributions,
	}

	run := 0
	for _, d := range days {
		if d.Count > 0 {
			run++
			s.LongestStreak = max(s.LongestStreak, run)
		} else {
			run = 0
		}
		if d.Count > s.MostActiveCount {
			s.MostActiveCount = d.Count
			s.MostActiveDay = d.Date
		}
	}

	s.CurrentStreak = currentStreak(days, o.asOf)
	return s
}

// currentStreak counts consecutive non-zero days backward from the last day
// on or before asOf (the last day overall when asOf is empty).
func currentStreak(days []calendar.Day, asOf string) int {
	end := len(days) - 1
	if asOf != "" {
		for end >= 0 && days[end].Date > asOf {
			end--
		}
	}

	streak := 0
	for i := end; i >= 0 && days[i].Count > 0; i-- {
		streak++
	}
	return streak
}

// Level buckets a day's count into the five intensity levels of the widget:
// 0, 1-3, 4-6, 7-9 and 10 or more.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}
