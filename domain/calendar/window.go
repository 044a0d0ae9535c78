package calendar

import "time"

// WindowDays is the length of the trailing contribution window, not counting today.
const WindowDays = 365

// Window is the inclusive date range [Start, End] covered by a contribution calendar.
// Both bounds are noon in the window's location; zones that skip midnight
// still have a noon on every date.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window ending on the calendar date of now in loc.
func NewWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	end := DayOf(now.In(loc))
	return Window{
		Start: addDays(end, -WindowDays),
		End:   end,
	}
}

// Since returns the earliest instant of the window's first date. In a zone
// that skips that midnight it falls an hour early, which callers filter out
// through Contains.
func (w Window) Since() time.Time {
	y, m, d := w.Start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, w.Location())
}

// Location returns the time zone the window dates are expressed in.
func (w Window) Location() *time.Location {
	return w.End.Location()
}

// Contains reports whether t falls on a date inside the window.
func (w Window) Contains(t time.Time) bool {
	day := DayOf(t.In(w.Location()))
	return !day.Before(w.Start) && !day.After(w.End)
}

// ContainsKey reports whether the ISO date key falls inside the window.
func (w Window) ContainsKey(key string) bool {
	day, err := ParseDateKey(key, w.Location())
	if err != nil {
		return false
	}
	return !day.Before(w.Start) && !day.After(w.End)
}

// Len returns the number of dates in the window.
func (w Window) Len() int {
	n := 0
	w.Each(func(time.Time) { n++ })
	return n
}

// Each calls fn for every date in the window, oldest first.
func (w Window) Each(fn func(day time.Time)) {
	for day := w.Start; !day.After(w.End); day = addDays(day, 1) {
		fn(day)
	}
}

// GridStart returns the Sunday on or before the window start.
func (w Window) GridStart() time.Time {
	return addDays(w.Start, -int(w.Start.Weekday()))
}

// DayOf returns noon on t's calendar date in t's location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location())
}

func addDays(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+n, 12, 0, 0, 0, day.Location())
}

// DateKey formats t as an ISO calendar date (YYYY-MM-DD).
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDateKey parses an ISO calendar date and returns noon of that date in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	civil, err := time.Parse(time.DateOnly, key)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := civil.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, loc), nil
}
