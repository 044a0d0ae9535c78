package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

func resultOf(counts ...int) calendar.Result {
	start := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	var weeks []calendar.Week
	var week calendar.Week
	total := 0
	for i, c := range counts {
		week.Days = append(week.Days, calendar.Day{
			Date:  calendar.DateKey(start.AddDate(0, 0, i)),
			Count: c,
		})
		total += c
		if len(week.Days) == calendar.DaysPerWeek {
			weeks = append(weeks, week)
			week = calendar.Week{}
		}
	}
	if len(week.Days) > 0 {
		weeks = append(weeks, week)
	}
	return calendar.Result{Weeks: weeks, User: "octocat", Total: total}
}

func TestDerive_Streaks(t *testing.T) {
	tests := []struct {
		name        string
		counts      []int
		wantCurrent int
		wantLongest int
	}{
		{"trailing single day", []int{1, 2, 0, 3}, 1, 2},
		{"all zero", []int{0, 0, 0}, 0, 0},
		{"ends on zero", []int{4, 4, 4, 0}, 0, 3},
		{"spans week boundary", []int{0, 0, 0, 0, 0, 1, 1, 1, 1}, 4, 4},
		{"longest in the middle", []int{1, 0, 1, 1, 1, 1, 0, 2, 2}, 2, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Derive(resultOf(tt.counts...))

			assert.Equal(t, tt.wantCurrent, s.CurrentStreak)
			assert.Equal(t, tt.wantLongest, s.LongestStreak)
		})
	}
}

func TestDerive_AsOfSkipsFuturePadding(t *testing.T) {
	// Arrange: 2026-01-04..2026-01-10, "today" is 2026-01-07.
	r := resultOf(0, 2, 3, 5, 0, 0, 0)

	// Act
	without := Derive(r)
	with := Derive(r, AsOf("2026-01-07"))

	// Assert
	assert.Equal(t, 0, without.CurrentStreak)
	assert.Equal(t, 3, with.CurrentStreak)
	assert.Equal(t, 3, with.LongestStreak)
}

func TestDerive_MostActiveDay(t *testing.T) {
	s := Derive(resultOf(1, 7, 3, 7, 2))

	assert.Equal(t, "2026-01-05", s.MostActiveDay)
	assert.Equal(t, 7, s.MostActiveCount)
}

func TestDerive_NoContributions(t *testing.T) {
	s := Derive(resultOf(0, 0, 0, 0, 0, 0, 0))

	assert.Equal(t, NoContributions, s.MostActiveDay)
	assert.Zero(t, s.MostActiveCount)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.AveragePerDay)
}

func TestDerive_AveragePerDay(t *testing.T) {
	tests := []struct {
		total int
		want  float64
	}{
		{365, 1.0},
		{1000, 2.7},
		{18, 0.0},
		{19, 0.1},
	}

	for _, tt := range tests {
		r := calendar.Result{Total: tt.total}
		assert.InDelta(t, tt.want, Derive(r).AveragePerDay, 1e-9, "total %d", tt.total)
	}
}

func TestDerive_TotalMatchesWindowSum(t *testing.T) {
	// Arrange
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	w := calendar.NewWindow(now, time.UTC)
	tally := calendar.NewTally(w)
	i := 0
	w.Each(func(day time.Time) {
		tally.Set(calendar.DateKey(day), i%5)
		i++
	})
	m := tally.Freeze()

	// Act
	s := Derive(calendar.NewResult("octocat", m), AsOf(calendar.DateKey(w.End)))

	// Assert
	sum := 0
	for _, day := range calendar.NewResult("octocat", m).Days() {
		if w.ContainsKey(day.Date) {
			sum += day.Count
		}
	}
	assert.Equal(t, sum, s.Total)
	assert.Equal(t, m.Total(), s.Total)
}

func TestLevel(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 250: 4}
	for count, want := range tests {
		assert.Equal(t, want, Level(count), "count %d", count)
	}
}
