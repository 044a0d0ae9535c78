package calendar

import (
	"maps"
	"time"
)

// ContributionMap maps every date of a Window to its contribution count.
// Keys span the whole window with no gaps; a ContributionMap is never
// mutated once built. Use a Tally to construct one.
type ContributionMap struct {
	window Window
	counts map[string]int
}

// Window returns the window the map covers.
func (m ContributionMap) Window() Window {
	return m.window
}

// Count returns the count recorded for the ISO date key, or 0 when the date
// is outside the window.
func (m ContributionMap) Count(key string) int {
	return m.counts[key]
}

// Len returns the number of dates in the map.
func (m ContributionMap) Len() int {
	return len(m.counts)
}

// Total returns the sum of all counts in the window.
func (m ContributionMap) Total() int {
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return total
}

// Counts returns a copy of the underlying date to count mapping.
func (m ContributionMap) Counts() map[string]int {
	return maps.Clone(m.counts)
}

// Tally accumulates contribution counts for a window before it is frozen
// into a ContributionMap.
type Tally struct {
	window Window
	counts map[string]int
}

// NewTally returns a tally with every date of the window set to zero.
func NewTally(w Window) *Tally {
	counts := make(map[string]int, WindowDays+1)
	w.Each(func(day time.Time) {
		counts[DateKey(day)] = 0
	})
	return &Tally{window: w, counts: counts}
}

// Add increments the bucket for the date of t. Timestamps outside the window
// are ignored and Add reports false.
func (t *Tally) Add(at time.Time) bool {
	if !t.window.Contains(at) {
		return false
	}
	t.counts[DateKey(at.In(t.window.Location()))]++
	return true
}

// Set stores an absolute count for an ISO date key. Keys outside the window
// and negative counts are ignored.
func (t *Tally) Set(key string, count int) bool {
	if count < 0 {
		return false
	}
	if _, ok := t.counts[key]; !ok {
		return false
	}
	t.counts[key] = count
	return true
}

// Freeze returns an immutable ContributionMap holding the tally's counts.
func (t *Tally) Freeze() ContributionMap {
	return ContributionMap{
		window: t.window,
		counts: maps.Clone(t.counts),
	}
}
