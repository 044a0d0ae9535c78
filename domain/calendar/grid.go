package calendar

// BuildWeeks lays the contribution map out as Sunday-aligned weeks, oldest
// first. The first week is padded back to the Sunday on or before the window
// start and the last week runs forward to Saturday; padding dates carry a
// count of 0 since the map has no entry for them.
func BuildWeeks(m ContributionMap) []Week {
	w := m.Window()
	weeks := make([]Week, 0, WindowDays/DaysPerWeek+2)

	day := w.GridStart()
	for !day.After(w.End) {
		week := Week{Days: make([]Day, 0, DaysPerWeek)}
		for i := 0; i < DaysPerWeek; i++ {
			key := DateKey(day)
			week.Days = append(week.Days, Day{Date: key, Count: m.Count(key)})
			day = addDays(day, 1)
		}
		weeks = append(weeks, week)
	}

	return weeks
}
